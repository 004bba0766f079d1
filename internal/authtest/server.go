// Package authtest runs an in-process stand-in for the lakehouse
// authentication API: password login, cookie-authorized refresh with
// rotation, logout, and bearer-protected routes.
package authtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const (
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	refreshCookieName = "refresh_token"
)

// Request is a call observed on a protected route.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	Body          string
}

// Server is the fake API. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mux    *http.ServeMux
	issuer *tokenIssuer

	mu            sync.Mutex
	users         map[string]User   // email -> user
	refreshTokens map[string]string // refresh token -> email
	accessTokens  map[string]bool   // issued and not revoked
	requests      []Request
	refreshStatus int
	refreshGate   chan struct{}
	refreshSeen   chan struct{}

	counts struct {
		logins, refreshes, logouts int
	}
}

// Option configures a Server.
type Option func(*Server)

// WithAccessTokenTTL sets the lifetime of issued access tokens.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.issuer.ttl = ttl
	}
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB, options ...Option) *Server {
	t.Helper()

	s := &Server{
		mux:           http.NewServeMux(),
		issuer:        newTokenIssuer(),
		users:         make(map[string]User),
		refreshTokens: make(map[string]string),
		accessTokens:  make(map[string]bool),
		refreshSeen:   make(chan struct{}, 64),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// Handle registers a bearer-protected route. Calls are recorded before the
// token is checked, so rejected attempts show up in Requests too.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.RegisterRouteFunc(pattern, ChainMiddleware(handler, s.RecordMiddleware, s.RequireAuth))
}

// HandleRaw registers a route with recording but no token check.
func (s *Server) HandleRaw(pattern string, handler http.HandlerFunc) {
	s.RegisterRouteFunc(pattern, ChainMiddleware(handler, s.RecordMiddleware))
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, s.RefreshHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.LogoutHandler())
}

// Requests returns the calls recorded on protected and raw routes.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) LoginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.logins
}

// RefreshCount is the number of /auth/refresh calls that reached the server.
func (s *Server) RefreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.refreshes
}

func (s *Server) LogoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.logouts
}

// SetRefreshStatus forces /auth/refresh to answer with code and an error
// body. Zero restores normal behavior.
func (s *Server) SetRefreshStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = code
}

// HoldRefresh makes /auth/refresh block until release is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.refreshGate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// RefreshSeen receives once for every /auth/refresh call as it arrives.
func (s *Server) RefreshSeen() <-chan struct{} {
	return s.refreshSeen
}

// RevokeAccessTokens makes every access token issued so far answer 401, as
// if it had expired server-side. Refresh cookies stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = make(map[string]bool)
}

// RevokeRefreshTokens invalidates every refresh cookie issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]string)
}
