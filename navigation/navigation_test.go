package navigation_test

import (
	"testing"

	"github.com/jrsteele09/lakehouse-client/navigation"
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/stretchr/testify/require"
)

func signedIn() *session.Store {
	s := session.NewStore()
	s.SetSession(session.Session{
		Email:       "ada@example.com",
		Role:        "admin",
		UserID:      "u-1",
		AccessToken: "access-1",
		TokenType:   "Bearer",
	})
	return s
}

func TestGuard_LoginAlwaysProceedsAndClears(t *testing.T) {
	for _, target := range []string{"/login", "/login/", "/login?next=/catalog", "login"} {
		t.Run(target, func(t *testing.T) {
			store := signedIn()
			d := navigation.NewGuard(store).Check(target, navigation.RouteCatalog)
			require.True(t, d.Proceed)
			require.Empty(t, d.Redirect)
			require.False(t, store.IsAuthenticated())
			require.Equal(t, session.Session{}, store.Current())
		})
	}

	t.Run("signed out", func(t *testing.T) {
		d := navigation.NewGuard(session.NewStore()).Check(navigation.RouteLogin, "")
		require.True(t, d.Proceed)
	})
}

func TestGuard_ProtectedRoutes(t *testing.T) {
	targets := append([]string{"/unknown", "/catalog/orders"}, navigation.Routes...)
	for _, target := range targets {
		if target == navigation.RouteLogin {
			continue
		}
		t.Run(target, func(t *testing.T) {
			d := navigation.NewGuard(session.NewStore()).Check(target, navigation.RouteHome)
			require.False(t, d.Proceed)
			require.Equal(t, navigation.RouteLogin, d.Redirect)

			store := signedIn()
			d = navigation.NewGuard(store).Check(target, navigation.RouteHome)
			require.True(t, d.Proceed)
			require.True(t, store.IsAuthenticated())
		})
	}
}

func TestRouter_Navigate(t *testing.T) {
	store := signedIn()
	r := navigation.NewRouter(store)
	defer r.Close()

	require.Equal(t, navigation.RouteCatalog, r.Navigate("/catalog"))
	require.Equal(t, navigation.RouteSettings, r.Navigate("/settings/"))
	require.Equal(t, navigation.RouteSettings, r.Current())

	store.Clear()
	require.Equal(t, navigation.RouteLogin, r.Current())
	require.Equal(t, navigation.RouteLogin, r.Navigate("/passports"))

	require.Equal(t, []string{navigation.RouteCatalog, navigation.RouteSettings, navigation.RouteLogin}, r.History())
}

func TestRouter_SessionClearedRedirects(t *testing.T) {
	store := signedIn()
	r := navigation.NewRouter(store)
	defer r.Close()
	r.Navigate(navigation.RouteCatalog)

	// a rejected renewal clears the store from somewhere else
	store.Clear()
	require.Equal(t, navigation.RouteLogin, r.Current())

	r.Close()
	store.SetSession(signedIn().Current())
	r.Navigate(navigation.RouteCatalog)
	store.Clear()
	require.Equal(t, navigation.RouteCatalog, r.Current())
}

func TestRouter_LoginPageClearsWithoutLooping(t *testing.T) {
	store := signedIn()
	r := navigation.NewRouter(store)
	defer r.Close()
	r.Navigate(navigation.RouteCatalog)

	require.Equal(t, navigation.RouteLogin, r.Navigate(navigation.RouteLogin))
	require.False(t, store.IsAuthenticated())
	require.Equal(t, []string{navigation.RouteCatalog, navigation.RouteLogin}, r.History())
}

func TestRouter_DestinationDroppedByDefault(t *testing.T) {
	store := session.NewStore()
	r := navigation.NewRouter(store)
	defer r.Close()

	require.Equal(t, navigation.RouteLogin, r.Navigate(navigation.RoutePassports))
	store.SetSession(signedIn().Current())
	require.Equal(t, navigation.RouteHome, r.LoginSucceeded())
}

func TestRouter_ResumeAfterLogin(t *testing.T) {
	t.Run("after redirect", func(t *testing.T) {
		store := session.NewStore()
		r := navigation.NewRouter(store, navigation.WithResumeAfterLogin())
		defer r.Close()

		require.Equal(t, navigation.RouteLogin, r.Navigate(navigation.RoutePassports))
		store.SetSession(signedIn().Current())
		require.Equal(t, navigation.RoutePassports, r.LoginSucceeded())

		// consumed
		r.Navigate(navigation.RouteCatalog)
		require.Equal(t, navigation.RouteHome, r.LoginSucceeded())
	})

	t.Run("after session cleared", func(t *testing.T) {
		store := signedIn()
		r := navigation.NewRouter(store, navigation.WithResumeAfterLogin())
		defer r.Close()

		r.Navigate(navigation.RouteSettings)
		store.Clear()
		require.Equal(t, navigation.RouteLogin, r.Current())

		store.SetSession(signedIn().Current())
		require.Equal(t, navigation.RouteSettings, r.LoginSucceeded())
	})
}
