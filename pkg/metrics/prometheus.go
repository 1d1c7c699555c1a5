// Package metrics provides Prometheus metrics for the heartgrid tuning service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline metrics - one "run" is one build-model action.
	runsTotal          prometheus.Counter
	runErrorsTotal     prometheus.Counter
	runDuration        prometheus.Histogram
	searchDuration     prometheus.Histogram
	gridPointsPerRun   prometheus.Histogram
	cvEvaluationsTotal prometheus.Counter
	treesFittedTotal   prometheus.Counter

	// Result gauges - last completed run.
	lastBestCVScore  prometheus.Gauge
	lastTestAccuracy prometheus.Gauge

	// Service state gauges.
	datasetRows     prometheus.Gauge
	datasetFeatures prometheus.Gauge
	reportsStored   prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking.
	errorsByComponent *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heartgrid",
		subsystem:        "tuner",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers every collector on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed model-build runs",
	})

	m.runErrorsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_errors_total",
		Help:      "Total number of model-build runs that failed",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of end-to-end run duration in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})

	m.searchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_duration_milliseconds",
		Help:      "Histogram of grid-search duration in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})

	m.gridPointsPerRun = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grid_points_per_run",
		Help:      "Histogram of evaluated grid points per run",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
	})

	m.cvEvaluationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cv_evaluations_total",
		Help:      "Total number of cross-validation fold evaluations",
	})

	m.treesFittedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trees_fitted_total",
		Help:      "Total number of decision trees fitted across all runs",
	})

	m.lastBestCVScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_best_cv_score",
		Help:      "Best mean cross-validation accuracy of the most recent run",
	})

	m.lastTestAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_test_accuracy",
		Help:      "Held-out test accuracy of the most recent run",
	})

	m.datasetRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows",
		Help:      "Number of rows in the loaded dataset",
	})

	m.datasetFeatures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_features",
		Help:      "Number of encoded feature columns in the loaded dataset",
	})

	m.reportsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_stored",
		Help:      "Number of run reports currently held in the history store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total errors by component and error type",
	}, []string{"component", "type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// GetRegistry returns the registry backing the global manager, for use
// with promhttp handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordRun records a completed run with its duration and grid size.
func RecordRun(durationMS float64, gridPoints int) {
	globalManager.runsTotal.Inc()
	globalManager.runDuration.Observe(durationMS)
	globalManager.gridPointsPerRun.Observe(float64(gridPoints))
}

// RecordRunError records a failed run.
func RecordRunError() {
	globalManager.runErrorsTotal.Inc()
}

// RecordSearchDuration records the grid-search portion of a run.
func RecordSearchDuration(durationMS float64) {
	globalManager.searchDuration.Observe(durationMS)
}

// RecordCVEvaluations adds n fold evaluations to the running total.
func RecordCVEvaluations(n int) {
	globalManager.cvEvaluationsTotal.Add(float64(n))
}

// RecordTreesFitted adds n fitted trees to the running total.
func RecordTreesFitted(n int) {
	globalManager.treesFittedTotal.Add(float64(n))
}

// UpdateLastScores publishes the headline scores of the latest run.
func UpdateLastScores(bestCV, testAccuracy float64) {
	globalManager.lastBestCVScore.Set(bestCV)
	globalManager.lastTestAccuracy.Set(testAccuracy)
}

// UpdateDatasetShape publishes the loaded dataset dimensions.
func UpdateDatasetShape(rows, features int) {
	globalManager.datasetRows.Set(float64(rows))
	globalManager.datasetFeatures.Set(float64(features))
}

// UpdateReportsStored publishes the current history store size.
func UpdateReportsStored(n int) {
	globalManager.reportsStored.Set(float64(n))
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records the latency of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMS float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMS)
}

// RecordErrorByComponent records a component-level error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage publishes current allocated bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount publishes the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause observation.
func RecordSystemGCPauseTime(pauseMS float64) {
	globalManager.systemGCPauseTime.Observe(pauseMS)
}
