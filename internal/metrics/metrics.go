package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Result constants for renewal outcomes.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

const namespace = "lakehouse_client"

// Client holds the counters emitted by the request dispatcher and the
// renewal service. A nil *Client is valid and records nothing.
type Client struct {
	requests  *prometheus.CounterVec
	retries   prometheus.Counter
	renewals  *prometheus.CounterVec
	coalesced prometheus.Counter
}

// NewClient creates the counters and registers them with reg.
func NewClient(reg prometheus.Registerer) (*Client, error) {
	c := &Client{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "API requests put on the wire, by method and status code.",
		}, []string{"method", "code"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Requests replayed after a 401 and a successful renewal.",
		}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renewals_total",
			Help:      "Session renewal attempts sent to the refresh endpoint, by result.",
		}, []string{"result"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renewals_coalesced_total",
			Help:      "Renewal requests that joined an attempt already in flight.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.requests, c.retries, c.renewals, c.coalesced} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Request records one wire attempt. code is 0 when no response arrived.
func (c *Client) Request(method string, code int) {
	if c == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	c.requests.WithLabelValues(method, label).Inc()
}

func (c *Client) Retry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

func (c *Client) Renewal(result string) {
	if c == nil {
		return
	}
	c.renewals.WithLabelValues(result).Inc()
}

func (c *Client) Coalesced() {
	if c == nil {
		return
	}
	c.coalesced.Inc()
}
