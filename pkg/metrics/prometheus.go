// Package metrics provides Prometheus metrics for the PlateHub ranking engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the ranking engine.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Core business metrics
	submissions       *prometheus.CounterVec
	demotions         prometheus.Counter
	submitRetries     prometheus.Counter
	integrityWarnings prometheus.Counter
	submitDuration    prometheus.Histogram

	// Read-side metrics
	statsCacheRequests *prometheus.CounterVec

	// HTTP surface metrics
	httpRequests *prometheus.CounterVec

	// Rate limiting
	rateLimited prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

func init() {
	globalManager = NewManager(customRegistry)
}

// NewManager creates a metrics manager registered on the given registry.
func NewManager(registry prometheus.Registerer) *Manager {
	m := &Manager{
		namespace: "platehub",
		subsystem: "rankings",
		registry:  registry,
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Total number of ranking submissions by outcome",
	}, []string{"outcome"})

	m.demotions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "demotions_total",
		Help:      "Total number of rankings demoted out of the top slot",
	})

	m.submitRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submit_retries_total",
		Help:      "Total number of submission transactions replayed after a conflict",
	})

	m.integrityWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "integrity_warnings_total",
		Help:      "Times more than one live #1 was found in a scope during demotion",
	})

	m.submitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submit_duration_seconds",
		Help:      "Histogram of end-to-end submission latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	m.statsCacheRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stats_cache_requests_total",
		Help:      "Stats snapshot cache lookups by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-user rate limiter",
	})
}

// RecordSubmission increments the submissions counter for one outcome.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordDemotions adds the number of demotions one commit induced.
func RecordDemotions(count int) {
	if count > 0 {
		globalManager.demotions.Add(float64(count))
	}
}

// RecordSubmitRetry increments the transaction replay counter.
func RecordSubmitRetry() {
	globalManager.submitRetries.Inc()
}

// RecordIntegrityWarning increments the corrupted-scope counter.
func RecordIntegrityWarning() {
	globalManager.integrityWarnings.Inc()
}

// ObserveSubmitDuration records one end-to-end submission latency.
func ObserveSubmitDuration(d time.Duration) {
	globalManager.submitDuration.Observe(d.Seconds())
}

// RecordStatsCacheHit records a stats cache lookup result.
func RecordStatsCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.statsCacheRequests.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(route, method, status string) {
	globalManager.httpRequests.WithLabelValues(route, method, status).Inc()
}

// RecordRateLimited increments the rate-limited request counter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// GetRegistry returns the registry backing the global manager, for exposing
// via an HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
