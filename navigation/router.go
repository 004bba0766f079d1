package navigation

import (
	"sync"

	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/rs/zerolog"
)

// Router tracks the current page, runs the guard on each navigation and
// sends the user to login when the session is cleared behind its back,
// e.g. when a renewal is rejected.
type Router struct {
	guard  *Guard
	store  *session.Store
	logger zerolog.Logger
	resume bool

	mu          sync.Mutex
	current     string
	history     []string
	pending     string
	navigating  bool
	unsubscribe func()
}

type RouterOption func(*Router)

func WithRouterLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithResumeAfterLogin keeps the page a redirect to login interrupted and
// returns to it from LoginSucceeded. Without it the page is dropped.
func WithResumeAfterLogin() RouterOption {
	return func(r *Router) {
		r.resume = true
	}
}

// NewRouter creates a Router on the home page (no guard check runs until
// the first Navigate) and subscribes it to store. Call Close to
// unsubscribe.
func NewRouter(store *session.Store, options ...RouterOption) *Router {
	r := &Router{
		store:   store,
		logger:  zerolog.Nop(),
		current: RouteHome,
	}
	for _, opt := range options {
		opt(r)
	}
	r.guard = NewGuard(store, WithGuardLogger(r.logger))
	r.unsubscribe = store.Subscribe(r.sessionChanged)
	return r
}

// Navigate moves to target, or to wherever the guard redirects, and returns
// the page the router ended on.
func (r *Router) Navigate(target string) string {
	to := normalize(target)

	r.mu.Lock()
	from := r.current
	r.navigating = true
	r.mu.Unlock()

	// the guard may clear the session, which calls back into sessionChanged
	decision := r.guard.Check(to, from)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigating = false

	landed := to
	if !decision.Proceed {
		landed = decision.Redirect
		if r.resume {
			r.pending = to
		}
	}
	r.moveLocked(landed)
	return landed
}

// LoginSucceeded navigates away from the login page after a successful
// login: to the interrupted page when resuming is enabled, home otherwise.
func (r *Router) LoginSucceeded() string {
	r.mu.Lock()
	next := r.pending
	r.pending = ""
	r.mu.Unlock()

	if next == "" || isLogin(next) {
		next = RouteHome
	}
	return r.Navigate(next)
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the pages visited, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// Close stops reacting to session changes.
func (r *Router) Close() {
	r.unsubscribe()
}

func (r *Router) sessionChanged(next session.Session) {
	if next.Authenticated() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.navigating || isLogin(r.current) {
		return
	}

	r.logger.Info().Str("from", r.current).Msg("Session ended, redirecting to login")
	if r.resume {
		r.pending = r.current
	}
	r.moveLocked(RouteLogin)
}

func (r *Router) moveLocked(page string) {
	if r.current == page && len(r.history) > 0 {
		return
	}
	r.current = page
	r.history = append(r.history, page)
}
