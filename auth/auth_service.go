package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/lakehouse-client/internal/config"
	"github.com/jrsteele09/lakehouse-client/internal/metrics"
	"github.com/jrsteele09/lakehouse-client/internal/transport"
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// renewKey is the single-flight key; there is one session per Service.
const renewKey = "renew"

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Service talks to the authentication endpoints and keeps the session store
// in step with them.
type Service struct {
	cfg     config.APIConfig
	store   *session.Store
	client  *http.Client
	renewal singleflight.Group
	logger  zerolog.Logger
	metrics *metrics.Client
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHTTPClient sets the HTTP client. It must share its cookie jar with the
// API dispatcher, otherwise the refresh cookie set at login never reaches
// /auth/refresh.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics records renewal outcomes.
func WithMetrics(m *metrics.Client) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a Service bound to store.
func NewService(cfg config.APIConfig, store *session.Store, options ...ServiceOption) (*Service, error) {
	if cfg == nil || cfg.GetAPIBaseURL() == "" {
		return nil, errors.New("[NewService] api base url is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] session store is required")
	}

	s := &Service{
		cfg:    cfg,
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.client == nil {
		client, err := transport.NewClient(config.HTTP{})
		if err != nil {
			return nil, errors.Wrap(err, "[NewService] http client")
		}
		s.client = client
	}
	return s, nil
}

// HTTPClient returns the client whose cookie jar holds the refresh cookie.
func (s *Service) HTTPClient() *http.Client {
	return s.client
}

// Store returns the session store the service writes to.
func (s *Service) Store() *session.Store {
	return s.store
}

// Login exchanges an email and password for a session. On success every
// session field is replaced; on failure the session is left as it was.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.Wrap(ErrInvalidCredentials, "[Login] email and password are required")
	}

	payload, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "[Login] encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(RouteAuthLogin), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "[Login] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Login] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	if !success(resp.StatusCode) {
		return unexpectedStatus("[Login]", resp)
	}

	sess, err := decodeSession(resp.Body)
	if err != nil {
		return errors.Wrap(err, "[Login]")
	}
	s.store.SetSession(sess)
	s.logger.Info().Str("user_id", sess.UserID).Msg("Logged in")
	return nil
}

// Renew asks the refresh endpoint for a new session. Concurrent callers
// share one in-flight request and all receive its result.
//
// A nil error means the store now holds the renewed session. ErrRenewalRejected
// means the server refused the renewal credential and the store was cleared.
// Any other error is a failed attempt that left the store untouched.
//
// The attempt itself runs detached from ctx, bounded by the renewal timeout,
// so one caller giving up does not fail the others.
func (s *Service) Renew(ctx context.Context) error {
	return s.renewShared(ctx, nil)
}

// RenewStale is Renew for a caller whose request was rejected while carrying
// the access token stale. When the attempt starts and the store already
// holds a different token, another renewal has completed in the meantime and
// no request is sent.
func (s *Service) RenewStale(ctx context.Context, stale string) error {
	return s.renewShared(ctx, &stale)
}

func (s *Service) renewShared(ctx context.Context, stale *string) error {
	leader := false
	ch := s.renewal.DoChan(renewKey, func() (interface{}, error) {
		leader = true
		if stale != nil {
			if current := s.store.AccessToken(); current != "" && current != *stale {
				s.metrics.Coalesced()
				s.logger.Debug().Msg("Session already renewed, skipping refresh")
				return nil, nil
			}
		}
		renewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.GetRenewalTimeout())
		defer cancel()
		return nil, s.renew(renewCtx)
	})

	select {
	case res := <-ch:
		if !leader {
			s.metrics.Coalesced()
			s.logger.Debug().Err(res.Err).Msg("Joined in-flight renewal")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) renew(ctx context.Context) error {
	s.logger.Debug().Msg("Renewing session")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(RouteAuthRefresh), nil)
	if err != nil {
		s.metrics.Renewal(metrics.ResultError)
		return errors.Wrap(err, "[Renew] build request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.Renewal(metrics.ResultError)
		s.logger.Warn().Err(err).Msg("Renewal request failed")
		return errors.Wrap(err, "[Renew] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		s.metrics.Renewal(metrics.ResultRejected)
		s.store.Clear()
		s.logger.Info().Msg("Renewal rejected, session cleared")
		return ErrRenewalRejected
	}
	if !success(resp.StatusCode) {
		s.metrics.Renewal(metrics.ResultError)
		return unexpectedStatus("[Renew]", resp)
	}

	sess, err := decodeSession(resp.Body)
	if err != nil {
		s.metrics.Renewal(metrics.ResultError)
		return errors.Wrap(err, "[Renew]")
	}

	s.store.SetSession(sess)
	s.metrics.Renewal(metrics.ResultSuccess)
	s.logger.Debug().Str("user_id", sess.UserID).Msg("Session renewed")
	return nil
}

// Logout tells the server to drop the refresh cookie, then clears the
// session whatever the server said.
func (s *Service) Logout(ctx context.Context) error {
	defer s.store.Clear()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(RouteAuthLogout), nil)
	if err != nil {
		return errors.Wrap(err, "[Logout] build request")
	}
	if accessToken := s.store.AccessToken(); accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Logout] request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !success(resp.StatusCode) {
		return unexpectedStatus("[Logout]", resp)
	}
	s.logger.Info().Msg("Logged out")
	return nil
}

func (s *Service) url(route string) string {
	return s.cfg.GetAPIBaseURL() + route
}

func decodeSession(body io.Reader) (session.Session, error) {
	var tr TokenResponse
	if err := json.NewDecoder(body).Decode(&tr); err != nil {
		return session.Session{}, errors.Wrapf(ErrMalformedResponse, "decode body (%v)", err)
	}
	return tr.Session()
}

func unexpectedStatus(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errors.Wrapf(ErrUnexpectedStatus, "%s %d %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}

func success(code int) bool {
	return code >= 200 && code < 300
}
