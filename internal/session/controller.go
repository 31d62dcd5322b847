// Package session owns the authenticated/unauthenticated boundary: login,
// token persistence in two tiers, and teardown on logout or a 401.
package session

import (
	"context"
	"errors"
	"sync"

	"losadmin/internal/backend"
	"losadmin/internal/events"
	"losadmin/internal/models"
	"losadmin/internal/tokens"
	"losadmin/internal/utils/logger"
)

// EntryPage is where every teardown sends the user.
const EntryPage = "/"

// Teardown reasons carried by events.LoggedOut.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgSessionNotSaved    = "Could not save the session, please try again"
)

// Authenticator exchanges credentials for tokens. A *backend.LoginError
// carries the message shown to the user.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.TokenPair, error)
}

// LoginResult mirrors {ok, message}.
type LoginResult struct {
	OK      bool
	Message string
}

// Controller is the only reader and writer of session state. The HTTP client
// reads the token through AccessToken and reports 401s through Unauthorized.
type Controller struct {
	auth      Authenticator
	ephemeral Store
	durable   Store
	bus       *events.EventBus
	logger    *logger.Logger

	mu sync.Mutex
}

// NewController wires the two tiers: ephemeral for ordinary logins, durable
// for "remember me". durable may be the same kind of store as ephemeral.
func NewController(auth Authenticator, ephemeral, durable Store, bus *events.EventBus) *Controller {
	return &Controller{
		auth:      auth,
		ephemeral: ephemeral,
		durable:   durable,
		bus:       bus,
		logger:    logger.New("session"),
	}
}

// SetAuthenticator swaps the credential exchange.
func (c *Controller) SetAuthenticator(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = a
}

// Login exchanges credentials and persists the result in the tier selected by
// remember. A failed or unsaved login leaves the session untouched.
func (c *Controller) Login(ctx context.Context, email, password string, remember bool) LoginResult {
	c.mu.Lock()
	auth := c.auth
	c.mu.Unlock()

	pair, err := auth.Authenticate(ctx, email, password)
	if err != nil {
		var le *backend.LoginError
		if errors.As(err, &le) && le.Message != "" {
			return LoginResult{Message: le.Message}
		}
		c.logger.Warn("Login failed: %v", err)
		return LoginResult{Message: msgInvalidCredentials}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tier := c.ephemeral
	if remember && c.durable != nil {
		tier = c.durable
	}
	st := State{AccessToken: pair.Access, RefreshToken: pair.Refresh, Authenticated: true}
	if err := tier.Save(ctx, st); err != nil {
		c.logger.Warn("Could not persist session: %v", err)
		return LoginResult{Message: msgSessionNotSaved}
	}
	// Only one tier holds a session at a time.
	c.clearOthers(ctx, tier)

	c.logger.Success("Logged in as %s", email)
	c.bus.Emit(events.SessionLoggedIn, email)
	return LoginResult{OK: true}
}

// IsLoggedIn reports whether either tier holds the authenticated flag.
func (c *Controller) IsLoggedIn(ctx context.Context) bool {
	st, ok := c.current(ctx)
	return ok && st.Authenticated
}

// AccessToken returns the stored access token, or "".
func (c *Controller) AccessToken(ctx context.Context) string {
	st, ok := c.current(ctx)
	if !ok {
		return ""
	}
	return st.AccessToken
}

// Claims decodes the stored access token for display. It returns nil when no
// token is stored, as in mock mode.
func (c *Controller) Claims(ctx context.Context) (*tokens.Claims, error) {
	token := c.AccessToken(ctx)
	if token == "" {
		return nil, nil
	}
	return tokens.ParseUnverified(token)
}

// Logout clears both tiers and redirects to the entry page. Calling it again
// is harmless.
func (c *Controller) Logout(ctx context.Context) {
	c.teardown(ctx, ReasonLogout)
}

// Unauthorized is the 401 path. It converges on the same state as Logout.
func (c *Controller) Unauthorized(ctx context.Context) {
	c.teardown(ctx, ReasonUnauthorized)
}

func (c *Controller) teardown(ctx context.Context, reason string) {
	c.mu.Lock()
	c.clearAll(ctx)
	c.mu.Unlock()

	c.logger.Info("Session cleared (%s)", reason)
	c.bus.Emit(events.SessionLoggedOut, events.LoggedOut{Reason: reason, Redirect: EntryPage})
}

// clearAll empties both tiers. A tier that fails to clear is logged; the
// other tier is still cleared. Caller holds c.mu.
func (c *Controller) clearAll(ctx context.Context) {
	for _, tier := range c.tiers() {
		if err := tier.Clear(ctx); err != nil {
			_ = c.logger.Error("Failed to clear session tier", err)
		}
	}
}

// clearOthers empties every tier except keep. Caller holds c.mu.
func (c *Controller) clearOthers(ctx context.Context, keep Store) {
	for _, tier := range c.tiers() {
		if tier == keep {
			continue
		}
		if err := tier.Clear(ctx); err != nil {
			_ = c.logger.Error("Failed to clear session tier", err)
		}
	}
}

// current returns the first tier holding an authenticated session.
func (c *Controller) current(ctx context.Context) (State, bool) {
	for _, tier := range c.tiers() {
		st, err := tier.Load(ctx)
		if err != nil {
			c.logger.Warn("Could not read session tier: %v", err)
			continue
		}
		if st.Authenticated {
			return st, true
		}
	}
	return State{}, false
}

func (c *Controller) tiers() []Store {
	if c.durable == nil || c.durable == c.ephemeral {
		return []Store{c.ephemeral}
	}
	return []Store{c.ephemeral, c.durable}
}
