package session_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fullSession() session.Session {
	return session.Session{
		Email:        "ada@example.com",
		Role:         "admin",
		UserID:       "u-1",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
	}
}

func TestStore_StartsEmpty(t *testing.T) {
	s := session.NewStore()
	require.False(t, s.IsAuthenticated())
	require.Equal(t, session.Session{}, s.Current())
}

func TestStore_SetSession(t *testing.T) {
	t.Run("with access token", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())
		require.True(t, s.IsAuthenticated())
		require.Equal(t, fullSession(), s.Current())
		require.Equal(t, "access-1", s.AccessToken())
	})

	t.Run("any non-empty access token authenticates", func(t *testing.T) {
		s := session.NewStore()
		next := fullSession()
		next.AccessToken = " "
		s.SetSession(next)

		require.True(t, s.IsAuthenticated())
		require.Equal(t, next, s.Current())
	})

	t.Run("without access token clears identity too", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())

		next := fullSession()
		next.AccessToken = ""
		s.SetSession(next)

		require.False(t, s.IsAuthenticated())
		require.Equal(t, session.Session{}, s.Current())
	})
}

func TestStore_Clear(t *testing.T) {
	for name, prior := range map[string]func(*session.Store){
		"from empty":         func(*session.Store) {},
		"from authenticated": func(s *session.Store) { s.SetSession(fullSession()) },
		"after patches": func(s *session.Store) {
			s.SetSession(fullSession())
			require.NoError(t, s.SetEmail("grace@example.com"))
			require.NoError(t, s.SetAccessToken("access-2"))
		},
	} {
		t.Run(name, func(t *testing.T) {
			s := session.NewStore()
			prior(s)
			s.Clear()

			require.False(t, s.IsAuthenticated())
			cur := s.Current()
			require.Empty(t, cur.Email)
			require.Empty(t, cur.Role)
			require.Empty(t, cur.UserID)
			require.Empty(t, cur.AccessToken)
			require.Empty(t, cur.RefreshToken)
			require.Empty(t, cur.TokenType)
		})
	}
}

func TestStore_NarrowPatches(t *testing.T) {
	t.Run("set email on authenticated session", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())
		require.NoError(t, s.SetEmail("grace@example.com"))

		cur := s.Current()
		require.Equal(t, "grace@example.com", cur.Email)
		require.Equal(t, "access-1", cur.AccessToken)
	})

	t.Run("set email when signed out", func(t *testing.T) {
		s := session.NewStore()
		require.ErrorIs(t, s.SetEmail("grace@example.com"), session.ErrNotAuthenticated)
		require.Equal(t, session.Session{}, s.Current())
	})

	t.Run("empty email rejected", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())
		require.ErrorIs(t, s.SetEmail(" "), session.ErrEmptyValue)
		require.Equal(t, "ada@example.com", s.Current().Email)
	})

	t.Run("set access token keeps identity", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())
		require.NoError(t, s.SetAccessToken("access-2"))

		cur := s.Current()
		require.Equal(t, "access-2", cur.AccessToken)
		require.Equal(t, "u-1", cur.UserID)
	})

	t.Run("set access token when signed out", func(t *testing.T) {
		s := session.NewStore()
		require.ErrorIs(t, s.SetAccessToken("access-2"), session.ErrNotAuthenticated)
		require.False(t, s.IsAuthenticated())
	})

	t.Run("empty access token signs out", func(t *testing.T) {
		s := session.NewStore()
		s.SetSession(fullSession())
		require.NoError(t, s.SetAccessToken(""))
		require.Equal(t, session.Session{}, s.Current())
	})
}

func TestStore_Subscribe(t *testing.T) {
	s := session.NewStore()

	var seen []session.Session
	unsubscribe := s.Subscribe(func(next session.Session) {
		// observers may read the store without deadlocking
		require.Equal(t, next, s.Current())
		seen = append(seen, next)
	})

	s.SetSession(fullSession())
	s.Clear()
	s.Clear() // no change, no notification

	require.Len(t, seen, 2)
	require.True(t, seen[0].Authenticated())
	require.False(t, seen[1].Authenticated())

	unsubscribe()
	unsubscribe()
	s.SetSession(fullSession())
	require.Len(t, seen, 2)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := session.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetSession(fullSession())
			_ = s.SetAccessToken("access-2")
		}()
		go func() {
			defer wg.Done()
			cur := s.Current()
			// snapshots are never half-written
			if cur.AccessToken == "" {
				assert.Empty(t, cur.UserID)
			} else {
				assert.Equal(t, "u-1", cur.UserID)
			}
		}()
	}
	wg.Wait()
	require.True(t, s.IsAuthenticated())
}

func TestTokenSource(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		_, err := session.NewTokenSource(session.NewStore()).Token()
		require.ErrorIs(t, err, session.ErrNotAuthenticated)
	})

	t.Run("carries expiry from the access token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
		require.NoError(t, err)

		s := session.NewStore()
		sess := fullSession()
		sess.AccessToken = raw
		sess.TokenType = ""
		s.SetSession(sess)

		tok, err := session.NewTokenSource(s).Token()
		require.NoError(t, err)
		require.Equal(t, raw, tok.AccessToken)
		require.Equal(t, "Bearer", tok.Type())
		require.True(t, exp.Equal(tok.Expiry))
	})

	t.Run("drives an oauth2 transport", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		s := session.NewStore()
		s.SetSession(fullSession())
		client := &http.Client{Transport: &oauth2.Transport{Source: session.NewTokenSource(s)}}

		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, "Bearer access-1", gotAuth)

		require.NoError(t, s.SetAccessToken("access-2"))
		resp, err = client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, "Bearer access-2", gotAuth)
	})
}
