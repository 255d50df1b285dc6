// Package metrics exposes request and session telemetry as prometheus
// collectors. Wire the Collector into the client with clubio.WithObserver
// and into the manager with clubio.WithSessionObserver.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	clubio "github.com/clubio/go-clubio"
)

var _ clubio.RequestObserver = &Collector{}

// Collector records API client and session manager telemetry.
type Collector struct {
	requests          *prometheus.CounterVec
	transportFailures *prometheus.CounterVec
	retries           *prometheus.CounterVec
	latency           prometheus.Histogram
	sessionChanges    *prometheus.CounterVec
}

// NewCollector registers the metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubio_requests_total",
			Help: "API requests by method, endpoint and status code",
		}, []string{"method", "endpoint", "status"}),
		transportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubio_transport_failures_total",
			Help: "Requests that received no response at all",
		}, []string{"method", "endpoint"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubio_retries_total",
			Help: "Retry attempts for idempotent requests",
		}, []string{"endpoint"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubio_request_latency_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		sessionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubio_session_transitions_total",
			Help: "Session state transitions by resulting state",
		}, []string{"state"}),
	}

	reg.MustRegister(
		c.requests,
		c.transportFailures,
		c.retries,
		c.latency,
		c.sessionChanges,
	)

	return c
}

func (c *Collector) RecordRequest(method, endpoint string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.latency.Observe(duration.Seconds())
}

func (c *Collector) RecordTransportFailure(method, endpoint string) {
	c.transportFailures.WithLabelValues(method, endpoint).Inc()
}

func (c *Collector) RecordRetry(endpoint string) {
	c.retries.WithLabelValues(endpoint).Inc()
}

// SessionObserver adapts the collector for clubio.WithSessionObserver.
func (c *Collector) SessionObserver() clubio.SessionObserver {
	return func(state clubio.SessionState, _ *clubio.User) {
		c.sessionChanges.WithLabelValues(string(state)).Inc()
	}
}
