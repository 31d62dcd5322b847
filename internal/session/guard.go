package session

import (
	"context"
	"sync"

	"losadmin/internal/events"
)

// Pages the guard knows by name.
const (
	PageLogin          = "login"
	PageSignup         = "signup"
	PageForgotPassword = "forgot_password"
	PageDashboard      = "dashboard"
)

var publicPages = map[string]bool{
	PageLogin:          true,
	PageSignup:         true,
	PageForgotPassword: true,
}

// Guard decides which page may render given the session state. It is
// evaluated on every navigation; teardowns reach it through the bus.
type Guard struct {
	session *Controller

	mu      sync.Mutex
	pending string
}

func NewGuard(session *Controller, bus *events.EventBus) *Guard {
	g := &Guard{session: session}
	bus.On(events.SessionLoggedOut, func(data interface{}) {
		if lo, ok := data.(events.LoggedOut); ok {
			g.mu.Lock()
			g.pending = pageFor(lo.Redirect)
			g.mu.Unlock()
		}
	})
	return g
}

// Resolve returns the page that should render when page is requested.
func (g *Guard) Resolve(ctx context.Context, page string) string {
	loggedIn := g.session.IsLoggedIn(ctx)
	switch {
	case page == "":
		if loggedIn {
			return PageDashboard
		}
		return PageLogin
	case page == PageLogin && loggedIn:
		return PageDashboard
	case publicPages[page]:
		return page
	case !loggedIn:
		return PageLogin
	default:
		return page
	}
}

// Public reports whether page renders without a session.
func (g *Guard) Public(page string) bool {
	return publicPages[page]
}

// Redirect returns and clears the navigation requested by the last teardown.
func (g *Guard) Redirect() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == "" {
		return "", false
	}
	p := g.pending
	g.pending = ""
	return p, true
}

func pageFor(path string) string {
	if path == EntryPage || path == "" {
		return PageLogin
	}
	return path
}
