package config_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/lakehouse-client/internal/config"
	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("LAKEHOUSE_API_URL", "https://lakehouse.example.com/api/")
		for _, k := range []string{"ENV", "APP_NAME", "LAKEHOUSE_LOG_LEVEL", "LAKEHOUSE_RENEWAL_TIMEOUT", "LAKEHOUSE_HTTP_TIMEOUT", "LAKEHOUSE_PROACTIVE_RENEWAL"} {
			t.Setenv(k, "")
			require.NoError(t, os.Unsetenv(k))
		}

		c, err := config.Parse()
		require.NoError(t, err)
		require.Equal(t, "https://lakehouse.example.com/api", c.GetAPIBaseURL())
		require.Equal(t, 10*time.Second, c.GetRenewalTimeout())
		require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
		require.False(t, c.GetProactiveRenewal())
		require.Equal(t, "DEV", c.GetEnv())
		require.Equal(t, "info", c.GetLogLevel())
		require.Equal(t, "Lakehouse", c.GetAppName())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("LAKEHOUSE_API_URL", "http://localhost:8000")
		t.Setenv("LAKEHOUSE_RENEWAL_TIMEOUT", "3s")
		t.Setenv("LAKEHOUSE_HTTP_TIMEOUT", "1m")
		t.Setenv("LAKEHOUSE_PROACTIVE_RENEWAL", "true")
		t.Setenv("LAKEHOUSE_LOG_LEVEL", " DEBUG ")
		t.Setenv("ENV", "prod")

		c, err := config.Parse()
		require.NoError(t, err)
		require.Equal(t, 3*time.Second, c.GetRenewalTimeout())
		require.Equal(t, time.Minute, c.GetHTTPTimeout())
		require.True(t, c.GetProactiveRenewal())
		require.Equal(t, "debug", c.GetLogLevel())
		require.Equal(t, "PROD", c.GetEnv())
	})

	t.Run("missing base url", func(t *testing.T) {
		t.Setenv("LAKEHOUSE_API_URL", "")

		_, err := config.Parse()
		require.ErrorIs(t, err, clienterrors.ErrMissingBaseURL)
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("LAKEHOUSE_API_URL", "https://lakehouse.example.com")
		t.Setenv("LAKEHOUSE_HTTP_TIMEOUT", "soon")

		_, err := config.Parse()
		require.Error(t, err)
		require.True(t, strings.HasPrefix(err.Error(), "parse config: "), err.Error())
	})
}

func TestAPI_Getters(t *testing.T) {
	a := config.API{BaseURL: "http://x"}
	require.Equal(t, 10*time.Second, a.GetRenewalTimeout())

	h := config.HTTP{}
	require.Equal(t, 30*time.Second, h.GetHTTPTimeout())
}
