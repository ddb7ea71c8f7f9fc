// Package metrics provides Prometheus metrics for the gridiron NFL query service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds; upstream and generator calls are slow.
var defaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheExpired *prometheus.CounterVec
	cacheClears  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Upstream (sports data) Metrics
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Generator Metrics
	generatorRequests *prometheus.CounterVec
	generatorLatency  prometheus.Histogram

	// Pipeline Metrics
	queryIntents         *prometheus.CounterVec
	queryDegraded        *prometheus.CounterVec
	summaryShapes        *prometheus.CounterVec
	summaryTruncations   prometheus.Counter
	summaryOutputChars   prometheus.Histogram
	queryPipelineLatency prometheus.Histogram

	// Prefetch Queue / Worker Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerJobs         *prometheus.CounterVec
	workerJobLatency   prometheus.Histogram

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
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
		namespace:        "gridiron",
		subsystem:        "nfl",
		histogramBuckets: defaultLatencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.cacheHits = auto.NewCounterVec(
		m.counterOpts("cache_hits_total", "Cache lookups served from a live entry"),
		[]string{"operation"},
	)
	m.cacheMisses = auto.NewCounterVec(
		m.counterOpts("cache_misses_total", "Cache lookups that invoked the wrapped read"),
		[]string{"operation"},
	)
	m.cacheExpired = auto.NewCounterVec(
		m.counterOpts("cache_expired_total", "Entries dropped because their ttl elapsed"),
		[]string{"operation"},
	)
	m.cacheClears = auto.NewCounter(m.counterOpts("cache_clears_total", "Administrative cache clears"))
	m.cacheEntries = auto.NewGauge(m.gaugeOpts("cache_entries", "Entries currently held by the cache"))

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Sports data requests by endpoint and outcome"),
		[]string{"endpoint", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Sports data request latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)

	m.generatorRequests = auto.NewCounterVec(
		m.counterOpts("generator_requests_total", "Answer generator calls by outcome"),
		[]string{"outcome"},
	)
	m.generatorLatency = auto.NewHistogram(
		m.histogramOpts("generator_latency_milliseconds", "Answer generator latency in milliseconds", m.histogramBuckets),
	)

	m.queryIntents = auto.NewCounterVec(
		m.counterOpts("query_intents_total", "Classified questions by intent"),
		[]string{"intent"},
	)
	m.queryDegraded = auto.NewCounterVec(
		m.counterOpts("query_degraded_total", "Answers produced from a degraded context by cause"),
		[]string{"cause"},
	)
	m.summaryShapes = auto.NewCounterVec(
		m.counterOpts("summary_shapes_total", "Summarized context bundles by detected shape"),
		[]string{"shape"},
	)
	m.summaryTruncations = auto.NewCounter(m.counterOpts("summary_truncations_total", "Summaries cut at the size ceiling"))
	m.summaryOutputChars = auto.NewHistogram(
		m.histogramOpts("summary_output_chars", "Serialized summary size in bytes",
			[]float64{256, 1024, 2048, 4096, 8192, 12000, 16000, 20000, 40000}),
	)
	m.queryPipelineLatency = auto.NewHistogram(
		m.histogramOpts("query_pipeline_latency_milliseconds", "End-to-end question answering latency", m.histogramBuckets),
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("prefetch_queue_size", "Pending prefetch jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("prefetch_queue_capacity", "Prefetch queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("prefetch_enqueued_total", "Prefetch jobs accepted"))
	m.queueEnqueueErrors = auto.NewCounterVec(
		m.counterOpts("prefetch_enqueue_errors_total", "Prefetch jobs rejected by reason"),
		[]string{"reason"},
	)
	m.workerCount = auto.NewGauge(m.gaugeOpts("prefetch_worker_count", "Prefetch workers running"))
	m.workerJobs = auto.NewCounterVec(
		m.counterOpts("prefetch_jobs_total", "Prefetch jobs executed by outcome"),
		[]string{"outcome"},
	)
	m.workerJobLatency = auto.NewHistogram(
		m.histogramOpts("prefetch_job_latency_milliseconds", "Prefetch job latency in milliseconds", m.histogramBuckets),
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordCacheHit counts a cache hit for operation.
func RecordCacheHit(operation string) {
	globalManager.cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss counts a cache miss for operation.
func RecordCacheMiss(operation string) {
	globalManager.cacheMisses.WithLabelValues(operation).Inc()
}

// RecordCacheExpired counts an entry dropped after its ttl.
func RecordCacheExpired(operation string) {
	globalManager.cacheExpired.WithLabelValues(operation).Inc()
}

// RecordCacheClear counts an administrative clear.
func RecordCacheClear() {
	globalManager.cacheClears.Inc()
}

// UpdateCacheEntries sets the number of live cache entries.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// RecordUpstreamRequest records one sports data call.
func RecordUpstreamRequest(endpoint, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordGeneratorRequest records one generator call.
func RecordGeneratorRequest(outcome string, latencyMs float64) {
	globalManager.generatorRequests.WithLabelValues(outcome).Inc()
	globalManager.generatorLatency.Observe(latencyMs)
}

// RecordQueryIntent counts a classified question.
func RecordQueryIntent(intent string) {
	globalManager.queryIntents.WithLabelValues(intent).Inc()
}

// RecordQueryDegraded counts an answer built from a fallback context.
func RecordQueryDegraded(cause string) {
	globalManager.queryDegraded.WithLabelValues(cause).Inc()
}

// RecordQueryLatency records end-to-end pipeline latency.
func RecordQueryLatency(latencyMs float64) {
	globalManager.queryPipelineLatency.Observe(latencyMs)
}

// RecordSummary records the shape and size of a summarized context.
func RecordSummary(shape string, chars int, truncated bool) {
	globalManager.summaryShapes.WithLabelValues(shape).Inc()
	globalManager.summaryOutputChars.Observe(float64(chars))
	if truncated {
		globalManager.summaryTruncations.Inc()
	}
}

// UpdateQueueSize sets the current prefetch queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the prefetch queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted prefetch job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueEnqueueError counts a rejected prefetch job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of prefetch workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerJob records a finished prefetch job.
func RecordWorkerJob(outcome string, latencyMs float64) {
	globalManager.workerJobs.WithLabelValues(outcome).Inc()
	globalManager.workerJobLatency.Observe(latencyMs)
}

// RecordErrorByType increments error counter by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments error counter by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
