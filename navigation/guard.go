// Package navigation decides which page the user may see from the state of
// the shared session.
package navigation

import (
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/rs/zerolog"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Proceed  bool
	Redirect string
}

func proceed() Decision {
	return Decision{Proceed: true}
}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

// Guard checks every navigation against the session. It only reads memory:
// no network calls and no token expiry checks. An expired token is found
// out by the server's 401.
type Guard struct {
	store  *session.Store
	logger zerolog.Logger
}

type GuardOption func(*Guard)

func WithGuardLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

func NewGuard(store *session.Store, options ...GuardOption) *Guard {
	g := &Guard{store: store, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Check decides a navigation from "from" to "to". Going to the login page
// always clears the session first and proceeds. Any other page needs an
// authenticated session, otherwise the decision redirects to login and the
// requested page is dropped.
func (g *Guard) Check(to, from string) Decision {
	if isLogin(to) {
		g.store.Clear()
		return proceed()
	}
	if !g.store.IsAuthenticated() {
		g.logger.Debug().Str("to", normalize(to)).Str("from", from).Msg("Not authenticated, redirecting to login")
		return redirect(RouteLogin)
	}
	return proceed()
}
