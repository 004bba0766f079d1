package transport

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/jrsteele09/lakehouse-client/internal/config"
	"golang.org/x/net/publicsuffix"
)

// NewClient builds the HTTP client shared by every component that talks to
// the lakehouse API. The cookie jar is what carries the HTTP-only refresh
// cookie from /auth/login to /auth/refresh, so the dispatcher and the
// renewal service must use the same client.
func NewClient(cfg config.HTTPConfig) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Jar:       jar,
		Timeout:   cfg.GetHTTPTimeout(),
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.GetUserAgent()},
	}, nil
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.userAgent == "" || r.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(r)
	}
	r2 := r.Clone(r.Context())
	r2.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r2)
}
