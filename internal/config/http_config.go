package config

import "time"

const defaultHTTPTimeout = 30 * time.Second

type HTTPConfig interface {
	GetHTTPTimeout() time.Duration
	GetUserAgent() string
}

type HTTP struct {
	// Timeout applies to every request; expiry is a generic failure, never a 401.
	Timeout   time.Duration `env:"LAKEHOUSE_HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent string        `env:"LAKEHOUSE_USER_AGENT"   envDefault:"lakehouse-client"`
}

var _ HTTPConfig = HTTP{}

func (h HTTP) GetHTTPTimeout() time.Duration {
	if h.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return h.Timeout
}

func (h HTTP) GetUserAgent() string {
	return h.UserAgent
}

func (h *HTTP) Sanitize() {
	if h.Timeout <= 0 {
		h.Timeout = defaultHTTPTimeout
	}
}
