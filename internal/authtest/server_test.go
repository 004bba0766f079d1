package authtest_test

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"

	"github.com/jrsteele09/lakehouse-client/internal/authtest"
	"github.com/stretchr/testify/require"
)

func jarClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func post(t *testing.T, c *http.Client, url, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_LoginRefreshRotation(t *testing.T) {
	srv := authtest.New(t)
	srv.AddUser("ada@example.com", "s3cret", "admin")
	c := jarClient(t)

	resp := post(t, c, srv.URL+authtest.RouteAuthLogin, `{"email":"ada@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, c, srv.URL+authtest.RouteAuthLogin, `{"email":"ada@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first string
	for _, ck := range resp.Cookies() {
		if ck.Name == "refresh_token" {
			first = ck.Value
			require.True(t, ck.HttpOnly)
		}
	}
	require.NotEmpty(t, first)

	resp = post(t, c, srv.URL+authtest.RouteAuthRefresh, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the rotated-out token is no longer accepted
	stale := &http.Client{}
	req, err := http.NewRequest(http.MethodPost, srv.URL+authtest.RouteAuthRefresh, nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: first})
	resp, err = stale.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, 2, srv.LoginCount())
	require.Equal(t, 2, srv.RefreshCount())
}

func TestServer_ProtectedRoute(t *testing.T) {
	srv := authtest.New(t)
	srv.AddUser("ada@example.com", "s3cret", "admin")
	srv.Handle("GET /catalog", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	get := func(bearer string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/catalog", nil)
		require.NoError(t, err)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusUnauthorized, get(""))

	tok, err := srv.IssueAccessToken("ada@example.com")
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, get(tok))

	expired, err := srv.ExpiredAccessToken("ada@example.com")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, get(expired))

	srv.RevokeAccessTokens()
	require.Equal(t, http.StatusUnauthorized, get(tok))

	require.Len(t, srv.Requests(), 4)
}
