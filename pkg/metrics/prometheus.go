// Package metrics provides Prometheus metrics for the guildscore service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline run outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	reportsFetched   prometheus.Counter
	recordsExtracted prometheus.Counter
	charactersScored prometheus.Gauge
	fightsObserved   prometheus.Gauge
	lastSuccessUnix  prometheus.Gauge

	// Provider metrics
	providerRequests        *prometheus.CounterVec
	providerRequestDuration *prometheus.HistogramVec
	providerTokenRefreshes  prometheus.Counter

	// Store metrics
	storeQueryDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "guildscore",
		subsystem:        "pipeline",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations
	auto := promauto.With(m.registry)

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of scoring pipeline runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "End-to-end duration of a pipeline run (fetch, extract, aggregate)",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.reportsFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_fetched_total",
		Help:        "Total number of reports returned by the log provider",
		ConstLabels: m.constLabels,
	})

	m.recordsExtracted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_extracted_total",
		Help:        "Total number of per-character fight records extracted",
		ConstLabels: m.constLabels,
	})

	m.charactersScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "characters_scored",
		Help:        "Number of characters in the latest published scoreboard",
		ConstLabels: m.constLabels,
	})

	m.fightsObserved = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fights_observed",
		Help:        "Distinct fights in the latest published scoreboard (attendance denominator)",
		ConstLabels: m.constLabels,
	})

	m.lastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_unix_seconds",
		Help:        "Unix time of the last successful pipeline run",
		ConstLabels: m.constLabels,
	})

	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "provider",
		Name:        "requests_total",
		Help:        "Requests sent to the log provider by operation and status",
		ConstLabels: m.constLabels,
	}, []string{"operation", "status"})

	m.providerRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "provider",
		Name:        "request_duration_milliseconds",
		Help:        "Log provider request latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.providerTokenRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "provider",
		Name:        "token_refreshes_total",
		Help:        "OAuth access token exchanges performed",
		ConstLabels: m.constLabels,
	})

	m.storeQueryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "query_duration_milliseconds",
		Help:        "Scoreboard query latency in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: m.constLabels,
	})
}

// RecordRun records the outcome and duration of a pipeline run.
func (m *Manager) RecordRun(status string, d time.Duration) {
	m.pipelineRuns.WithLabelValues(status).Inc()
	m.pipelineDuration.Observe(float64(d.Milliseconds()))
	if status == StatusSuccess {
		m.lastSuccessUnix.SetToCurrentTime()
	}
}

// RecordRun records a pipeline run on the global manager.
func RecordRun(status string, d time.Duration) {
	globalManager.RecordRun(status, d)
}

// AddReportsFetched adds n to the fetched reports counter.
func AddReportsFetched(n int) {
	globalManager.reportsFetched.Add(float64(n))
}

// AddRecordsExtracted adds n to the extracted records counter.
func AddRecordsExtracted(n int) {
	globalManager.recordsExtracted.Add(float64(n))
}

// UpdateScoreboard sets the size gauges of the latest published scoreboard.
func UpdateScoreboard(characters, fights int) {
	globalManager.charactersScored.Set(float64(characters))
	globalManager.fightsObserved.Set(float64(fights))
}

// RecordProviderRequest records one provider round trip.
func RecordProviderRequest(operation, status string, latencyMs float64) {
	globalManager.providerRequests.WithLabelValues(operation, status).Inc()
	globalManager.providerRequestDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordTokenRefresh increments the token exchange counter.
func RecordTokenRefresh() {
	globalManager.providerTokenRefreshes.Inc()
}

// RecordStoreQuery records one scoreboard read.
func RecordStoreQuery(query string, latencyMs float64) {
	globalManager.storeQueryDuration.WithLabelValues(query).Observe(latencyMs)
}

// RecordHTTPRequest records HTTP request count.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError records an error for component.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
