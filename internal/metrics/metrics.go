// Package metrics exposes Prometheus instrumentation for the reconcile/handicap/balance pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hcap"

// Metrics holds all application collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reconciledEntries *prometheus.CounterVec
	malformedPayloads prometheus.Counter
	gamesRecorded     prometheus.Counter
	repairIterations  prometheus.Histogram
	teamImbalance     prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// Entry outcomes used as the "outcome" label
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeNull      = "null"
)

// New creates collectors registered on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		reconciledEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_entries_total",
			Help:      "Extraction entries processed by the reconciler, by outcome.",
		}, []string{"outcome"}),
		malformedPayloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_malformed_total",
			Help:      "Extraction payloads rejected as malformed.",
		}),
		gamesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_recorded_total",
			Help:      "Games persisted with at least one reconciled score.",
		}),
		repairIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_repair_iterations",
			Help:      "Swap iterations used by the team balancer.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		teamImbalance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_imbalance",
			Help:      "Absolute handicap difference between balanced teams.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by method, route template and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route template.",
			// Extraction calls can run for tens of seconds
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60, 90},
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.reconciledEntries,
		m.malformedPayloads,
		m.gamesRecorded,
		m.repairIterations,
		m.teamImbalance,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveReconcile records the per-entry outcomes of one reconcile pass
func (m *Metrics) ObserveReconcile(matched, unmatched, null int) {
	if m == nil {
		return
	}
	m.reconciledEntries.WithLabelValues(OutcomeMatched).Add(float64(matched))
	m.reconciledEntries.WithLabelValues(OutcomeUnmatched).Add(float64(unmatched))
	m.reconciledEntries.WithLabelValues(OutcomeNull).Add(float64(null))
}

// IncMalformed records a rejected payload
func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	m.malformedPayloads.Inc()
}

// IncGamesRecorded records a persisted game
func (m *Metrics) IncGamesRecorded() {
	if m == nil {
		return
	}
	m.gamesRecorded.Inc()
}

// ObserveBalance records the result of one balancing run
func (m *Metrics) ObserveBalance(iterations, imbalance int) {
	if m == nil {
		return
	}
	m.repairIterations.Observe(float64(iterations))
	m.teamImbalance.Observe(float64(imbalance))
}

// ObserveRequest records one API request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
