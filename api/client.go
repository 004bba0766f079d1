package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/lakehouse-client/internal/config"
	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
	"github.com/jrsteele09/lakehouse-client/internal/metrics"
	"github.com/jrsteele09/lakehouse-client/internal/transport"
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/jrsteele09/lakehouse-client/token"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// maxFailureBody caps how much of an error body a RequestFailure keeps.
const maxFailureBody = 64 << 10

// Renewer renews the shared session on behalf of a request that carried
// the access token stale. It sends nothing when the store already holds a
// newer token. auth.Service satisfies it.
type Renewer interface {
	RenewStale(ctx context.Context, stale string) error
}

// Client sends authenticated requests to the lakehouse API. A 401 triggers
// one session renewal and one retry of the same request.
type Client struct {
	cfg       config.APIConfig
	store     *session.Store
	renewer   Renewer
	client    *http.Client
	logger    zerolog.Logger
	metrics   *metrics.Client
	proactive bool
}

type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client. Use the renewal service's client so
// both share the cookie jar.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Client) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithProactiveRenewal renews before sending when the stored token already
// looks expired. The request is sent either way.
func WithProactiveRenewal() ClientOption {
	return func(c *Client) {
		c.proactive = true
	}
}

// NewClient creates a Client. When no HTTP client is given and renewer
// exposes one, that client is used so the refresh cookie is shared.
func NewClient(cfg config.APIConfig, store *session.Store, renewer Renewer, options ...ClientOption) (*Client, error) {
	if cfg == nil || cfg.GetAPIBaseURL() == "" {
		return nil, clienterrors.ErrMissingBaseURL
	}
	if store == nil || renewer == nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrEmptyValue, "[NewClient] session store and renewer are required")
	}

	c := &Client{
		cfg:       cfg,
		store:     store,
		renewer:   renewer,
		logger:    zerolog.Nop(),
		proactive: cfg.GetProactiveRenewal(),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.client == nil {
		if shared, ok := renewer.(interface{ HTTPClient() *http.Client }); ok {
			c.client = shared.HTTPClient()
		}
	}
	if c.client == nil {
		client, err := transport.NewClient(config.HTTP{})
		if err != nil {
			return nil, clienterrors.Wrapf(err, "[NewClient] http client")
		}
		c.client = client
	}
	return c, nil
}

// Send issues req and decodes a JSON response into out. out may be nil. A
// 204 leaves out untouched. Non-2xx answers are returned as *RequestFailure;
// transport errors and timeouts are returned wrapped and are never retried.
func (c *Client) Send(ctx context.Context, req Request, out any) error {
	method := req.method()
	url := c.cfg.GetAPIBaseURL() + req.Endpoint

	payload, err := req.payload()
	if err != nil {
		return clienterrors.Wrapf(err, "[Send] encode body for %s %s", method, req.Endpoint)
	}

	rc := &call{
		method:    method,
		url:       url,
		payload:   payload,
		header:    req.Header,
		requestID: uuid.NewString(),
	}
	log := c.logger.With().Str("method", method).Str("endpoint", req.Endpoint).Str("request_id", rc.requestID).Logger()

	renewed := false
	if current := c.store.AccessToken(); c.proactive && current != "" && token.IsExpired(current) {
		renewed = true
		if err := c.renewer.RenewStale(ctx, current); err != nil {
			log.Debug().Err(err).Msg("Proactive renewal failed")
		}
	}

	sent := c.store.AccessToken()
	resp, err := c.do(ctx, rc, sent)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if next, ok := c.retryToken(ctx, log, sent, renewed); ok {
			drain(resp)
			c.metrics.Retry()
			log.Debug().Msg("Retrying with renewed session")
			if resp, err = c.do(ctx, rc, next); err != nil {
				return err
			}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxFailureBody))
		log.Warn().Int("status", resp.StatusCode).Msg("API request failed")
		return &RequestFailure{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(body),
			Method:     method,
			URL:        url,
		}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return clienterrors.Wrapf(clienterrors.ErrMalformedResponse, "[Send] %s %s: %v", method, req.Endpoint, err)
	}
	return nil
}

// retryToken decides what to do with a 401 for a request sent with token
// sent. It returns the token to retry with, or false to surface the 401.
func (c *Client) retryToken(ctx context.Context, log zerolog.Logger, sent string, renewed bool) (string, bool) {
	// another caller renewed while this request was in flight
	if current := c.store.AccessToken(); current != "" && current != sent {
		return current, true
	}
	if renewed {
		return "", false
	}

	log.Debug().Msg("Unauthorized, renewing session")
	if err := c.renewer.RenewStale(ctx, sent); err != nil {
		log.Info().Err(err).Msg("Renewal failed, not retrying")
		return "", false
	}
	current := c.store.AccessToken()
	return current, current != ""
}

type call struct {
	method    string
	url       string
	payload   []byte
	header    http.Header
	requestID string
}

func (c *Client) do(ctx context.Context, call *call, accessToken string) (*http.Response, error) {
	var body io.Reader
	if call.payload != nil {
		body = bytes.NewReader(call.payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, call.url, body)
	if err != nil {
		return nil, clienterrors.Wrapf(err, "[Send] build request")
	}
	for k, values := range call.header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if mutates(call.method) {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, call.requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.Request(call.method, 0)
		return nil, clienterrors.Wrapf(err, "[Send] %s %s", call.method, call.url)
	}
	c.metrics.Request(call.method, resp.StatusCode)
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFailureBody))
	resp.Body.Close()
}

// Send is the typed form of Client.Send. A 204 yields the zero T.
func Send[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	if err := c.Send(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Get sends a GET to endpoint.
func Get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodGet, Endpoint: endpoint})
}

// Post sends body as JSON to endpoint.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}
