package session

import (
	"strings"
	"sync"

	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNotAuthenticated = clienterrors.ErrNotAuthenticated
	ErrEmptyValue       = clienterrors.ErrEmptyValue
)

// Observer is told about every change to the session, with the new value.
// Observers run on the goroutine that made the change, after the store has
// released its lock, so they may read the store again.
type Observer func(Session)

// Store is the single holder of the current session. Every component that
// needs the session shares one *Store; none keeps its own copy.
type Store struct {
	mu        sync.RWMutex
	current   Session
	observers map[int]Observer
	nextID    int
	logger    zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for session transitions.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore returns an empty, unauthenticated store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		current:   empty(),
		observers: make(map[int]Observer),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether an access token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated()
}

// AccessToken returns the current bearer token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

// SetSession replaces all six fields at once. A session without an access
// token cannot carry identity, so it is stored as the cleared session.
func (s *Store) SetSession(next Session) {
	if next.AccessToken == "" {
		s.Clear()
		return
	}
	s.update(func(Session) Session { return next })
	s.logger.Debug().Str("user_id", next.UserID).Msg("session set")
}

// SetEmail patches the email of an authenticated session.
func (s *Store) SetEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return clienterrors.Wrapf(ErrEmptyValue, "set email")
	}
	return s.patch(func(cur Session) Session {
		cur.Email = email
		return cur
	})
}

// SetAccessToken swaps the bearer token of an authenticated session, leaving
// identity untouched. An empty token signs the session out entirely.
func (s *Store) SetAccessToken(accessToken string) error {
	if accessToken == "" {
		s.Clear()
		return nil
	}
	return s.patch(func(cur Session) Session {
		cur.AccessToken = accessToken
		return cur
	})
}

// Clear resets identity and credentials together.
func (s *Store) Clear() {
	changed := s.update(func(Session) Session { return empty() })
	if changed {
		s.logger.Debug().Msg("session cleared")
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(observer Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// patch applies fn only while the session is authenticated, so narrow
// updates can never produce identity without credentials.
func (s *Store) patch(fn func(Session) Session) error {
	s.mu.Lock()
	if !s.current.Authenticated() {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.current = fn(s.current)
	next, observers := s.current, s.snapshotObservers()
	s.mu.Unlock()

	notify(observers, next)
	return nil
}

// update replaces the session and notifies observers when the value changed.
func (s *Store) update(fn func(Session) Session) bool {
	s.mu.Lock()
	prev := s.current
	s.current = fn(prev)
	next, observers := s.current, s.snapshotObservers()
	s.mu.Unlock()

	if prev == next {
		return false
	}
	notify(observers, next)
	return true
}

// snapshotObservers must be called with mu held.
func (s *Store) snapshotObservers() []Observer {
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	return observers
}

func notify(observers []Observer, next Session) {
	for _, o := range observers {
		o(next)
	}
}
