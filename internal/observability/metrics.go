package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the service collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	votes           prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_registry_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identity_registry_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_registry_http_errors_total",
			Help: "HTTP error responses by route, method and error code",
		}, []string{"path", "method", "code"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_registry_lifecycle_transitions_total",
			Help: "Identity lifecycle transitions by kind and outcome",
		}, []string{"transition", "outcome"}),
		votes: factory.NewCounter(prometheus.CounterOpts{
			Name: "identity_registry_votes_total",
			Help: "Votes accepted across all polls",
		}),
	}
}

// RecordRequest counts a served request and observes its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordTransition counts one lifecycle settlement attempt.
func (m *Metrics) RecordTransition(transition string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

// RecordVote counts an accepted vote.
func (m *Metrics) RecordVote() {
	if m == nil {
		return
	}
	m.votes.Inc()
}

// Gatherer exposes the registry for scraping and tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
