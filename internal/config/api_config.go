package config

import (
	"strings"
	"time"

	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
)

const defaultRenewalTimeout = 10 * time.Second

type APIConfig interface {
	GetAPIBaseURL() string
	GetRenewalTimeout() time.Duration
	GetProactiveRenewal() bool
}

// API holds the lakehouse API settings shared by the dispatcher and the
// renewal service.
type API struct {
	// BaseURL is prepended verbatim to every endpoint, e.g. "https://lakehouse.example.com/api".
	BaseURL string `env:"LAKEHOUSE_API_URL"`

	// RenewalTimeout bounds a single /auth/refresh round trip.
	RenewalTimeout time.Duration `env:"LAKEHOUSE_RENEWAL_TIMEOUT" envDefault:"10s"`

	// ProactiveRenewal renews before sending when the stored token already looks expired.
	ProactiveRenewal bool `env:"LAKEHOUSE_PROACTIVE_RENEWAL" envDefault:"false"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.BaseURL
}

func (a API) GetRenewalTimeout() time.Duration {
	if a.RenewalTimeout <= 0 {
		return defaultRenewalTimeout
	}
	return a.RenewalTimeout
}

func (a API) GetProactiveRenewal() bool {
	return a.ProactiveRenewal
}

func (a *API) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.RenewalTimeout <= 0 {
		a.RenewalTimeout = defaultRenewalTimeout
	}
}

func (a API) Validate() error {
	if a.BaseURL == "" {
		return clienterrors.ErrMissingBaseURL
	}
	return nil
}
