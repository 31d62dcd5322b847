package remote

import (
	"context"
	"errors"
	"net/http"

	"losadmin/internal/backend"
	"losadmin/internal/httpclient"
	"losadmin/internal/models"
	"losadmin/internal/utils/logger"
)

// Login failure messages shown to the user.
const (
	msgNoToken            = "No token received"
	msgInvalidCredentials = "Invalid email or password"
)

// Authenticator exchanges credentials for a token pair at /api/token/.
// The exchange is attempted once; it is not retried.
type Authenticator struct {
	client *httpclient.Client
	logger *logger.Logger
}

// NewAuthenticator expects a client without credentials, so a rejected login
// does not trigger session teardown.
func NewAuthenticator(client *httpclient.Client) *Authenticator {
	return &Authenticator{client: client, logger: logger.New("auth")}
}

// TokenRequest is the login payload.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (models.TokenPair, error) {
	resp, err := a.client.Do(ctx, http.MethodPost, pathToken, TokenRequest{Email: email, Password: password}, nil)
	if err != nil {
		a.logger.Warn("Login Error: %v", err)
		var se *httpclient.StatusError
		if errors.As(err, &se) && se.Detail() != "" {
			return models.TokenPair{}, &backend.LoginError{Message: se.Detail()}
		}
		return models.TokenPair{}, &backend.LoginError{Message: msgInvalidCredentials}
	}

	var pair models.TokenPair
	if err := resp.Decode(&pair); err != nil || pair.Access == "" {
		return models.TokenPair{}, &backend.LoginError{Message: msgNoToken}
	}
	return pair, nil
}
