package mock

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"losadmin/internal/backend"
	"losadmin/internal/models"
)

// Demo credentials accepted in mock mode.
const (
	DemoEmail    = "admin@los.com"
	DemoPassword = "admin"
)

const loginHint = "Mock Login: Use admin@los.com / admin"

// Authenticator accepts exactly one credential pair and issues no tokens.
type Authenticator struct {
	email string
	hash  []byte
}

// NewAuthenticator hashes password once so later checks never compare plaintext.
func NewAuthenticator(email, password string) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Authenticator{email: strings.ToLower(email), hash: hash}, nil
}

// NewDemoAuthenticator accepts admin@los.com / admin.
func NewDemoAuthenticator() (*Authenticator, error) {
	return NewAuthenticator(DemoEmail, DemoPassword)
}

func (a *Authenticator) Authenticate(_ context.Context, email, password string) (models.TokenPair, error) {
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		return models.TokenPair{}, &backend.LoginError{Message: loginHint}
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return models.TokenPair{}, &backend.LoginError{Message: loginHint}
	}
	return models.TokenPair{}, nil
}
