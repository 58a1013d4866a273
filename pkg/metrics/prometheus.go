// Package metrics provides Prometheus metrics for the crosscount leaderboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "crosscount"
	defaultSubsystem = "leaderboard"
)

// storeLatencyBuckets are in milliseconds; local stores answer well under 50ms.
var storeLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250}

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Business metrics
	sessionsSubmitted prometheus.Counter
	sessionsRejected  *prometheus.CounterVec
	trackedSessions   prometheus.Gauge
	trackedUsers      prometheus.Gauge
	aggregateLatency  prometheus.Histogram

	// Store metrics
	storeAppendLatency *prometheus.HistogramVec
	storeReadLatency   *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to keep the exposition free of default-registry noise.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsSubmitted = auto.NewCounter(m.counterOpts(
		"sessions_submitted_total", "Total number of sessions accepted by POST /api/submit"))
	m.sessionsRejected = auto.NewCounterVec(m.counterOpts(
		"sessions_rejected_total", "Total number of rejected session submissions by reason"),
		[]string{"reason"})
	m.trackedSessions = auto.NewGauge(m.gaugeOpts(
		"sessions", "Number of sessions seen by the last aggregation"))
	m.trackedUsers = auto.NewGauge(m.gaugeOpts(
		"users", "Number of distinct users seen by the last aggregation"))
	m.aggregateLatency = auto.NewHistogram(m.histogramOpts(
		"aggregation_latency_milliseconds", "Time spent reading and aggregating sessions", storeLatencyBuckets))

	m.storeAppendLatency = auto.NewHistogramVec(m.histogramOpts(
		"store_append_latency_milliseconds", "Session store append latency", storeLatencyBuckets),
		[]string{"backend"})
	m.storeReadLatency = auto.NewHistogramVec(m.histogramOpts(
		"store_read_latency_milliseconds", "Session store full read latency", storeLatencyBuckets),
		[]string{"backend"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts(
		"errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"})
}

// RecordSessionSubmitted increments the accepted sessions counter.
func RecordSessionSubmitted() {
	globalManager.sessionsSubmitted.Inc()
}

// RecordSessionRejected increments the rejected sessions counter for reason.
func RecordSessionRejected(reason string) {
	globalManager.sessionsRejected.WithLabelValues(reason).Inc()
}

// UpdateTracked sets the session and user gauges.
func UpdateTracked(sessions, users int) {
	globalManager.trackedSessions.Set(float64(sessions))
	globalManager.trackedUsers.Set(float64(users))
}

// RecordAggregationLatency records one read-and-aggregate pass.
func RecordAggregationLatency(d time.Duration) {
	globalManager.aggregateLatency.Observe(float64(d.Microseconds()) / 1000)
}

// RecordStoreAppendLatency records a store append in milliseconds.
func RecordStoreAppendLatency(backend string, latencyMs float64) {
	globalManager.storeAppendLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordStoreReadLatency records a full store read in milliseconds.
func RecordStoreReadLatency(backend string, latencyMs float64) {
	globalManager.storeReadLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
