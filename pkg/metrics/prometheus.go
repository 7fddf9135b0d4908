// Package metrics provides Prometheus metrics for the tier list ranking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking state
	rankMutations        *prometheus.CounterVec
	scoreUpdates         prometheus.Counter
	scoreRejections      prometheus.Counter
	orderRecomputations  prometheus.Counter
	adjustments          *prometheus.CounterVec
	rankedItems          prometheus.Gauge
	totalItems           prometheus.Gauge
	frozen               prometheus.Gauge
	orderRecomputeMicros prometheus.Histogram

	// Graph projection
	graphBuilds         *prometheus.CounterVec
	graphEntities       prometheus.Gauge
	graphRelations      prometheus.Gauge
	graphBuildLatency   prometheus.Histogram
	exportsServed       *prometheus.CounterVec
	exportBytesObserved prometheus.Histogram

	// Edit preparation
	preparations       *prometheus.CounterVec
	preparationLatency prometheus.Histogram
	preparedOperations *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tierlist",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.rankMutations = m.counterVec("rank_mutations_total", "Ranked-set mutations by operation (insert, remove, reset)", "operation")
	m.scoreUpdates = m.counter("score_updates_total", "Total number of accepted score assignments")
	m.scoreRejections = m.counter("score_rejections_total", "Total number of score assignments rejected by policy or precondition")
	m.orderRecomputations = m.counter("order_recomputations_total", "Total number of live display order recomputations")
	m.adjustments = m.counterVec("adjustments_total", "Interactive adjustments by phase (begin, end, preempted)", "phase")
	m.rankedItems = m.gauge("ranked_items", "Number of items currently ranked")
	m.totalItems = m.gauge("total_items", "Number of items in the catalog")
	m.frozen = m.gauge("order_frozen", "1 while the display order is frozen by an adjustment")
	m.orderRecomputeMicros = m.histogram("order_recompute_microseconds", "Display order recomputation time in microseconds",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})

	m.graphBuilds = m.counterVec("graph_builds_total", "Graph projections built by kind (knowledge, property)", "kind")
	m.graphEntities = m.gauge("graph_entities", "Entity count of the last built knowledge graph")
	m.graphRelations = m.gauge("graph_relations", "Relation count of the last built knowledge graph")
	m.graphBuildLatency = m.histogram("graph_build_latency_milliseconds", "Knowledge graph build latency in milliseconds", m.histogramBuckets)
	m.exportsServed = m.counterVec("exports_total", "Export documents served by artifact", "artifact")
	m.exportBytesObserved = m.histogram("export_size_bytes", "Size of served export documents in bytes",
		prometheus.ExponentialBuckets(256, 4, 8))

	m.preparations = m.counterVec("preparations_total", "Edit preparations by outcome (success, error, rejected)", "outcome")
	m.preparationLatency = m.histogram("preparation_latency_milliseconds", "Edit preparation latency in milliseconds", m.histogramBuckets)
	m.preparedOperations = m.gaugeVec("prepared_operations", "Operation counts of the last prepared edit by kind", "kind")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current number of queued preparation jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueue attempts")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Queue enqueue latency in milliseconds", m.histogramBuckets)

	m.workerCount = m.gauge("worker_count", "Current number of preparation workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed worker jobs")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that ended in error", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause time in milliseconds", m.histogramBuckets)
}

// Ranking state.

// RecordRankMutation counts an insert, remove or reset of the ranked set.
func RecordRankMutation(operation string) {
	globalManager.rankMutations.WithLabelValues(operation).Inc()
}

// RecordScoreUpdate counts an accepted score assignment.
func RecordScoreUpdate() {
	globalManager.scoreUpdates.Inc()
}

// RecordScoreRejection counts a refused score assignment.
func RecordScoreRejection() {
	globalManager.scoreRejections.Inc()
}

// RecordOrderRecompute counts a live order recomputation and its duration.
func RecordOrderRecompute(d time.Duration) {
	globalManager.orderRecomputations.Inc()
	globalManager.orderRecomputeMicros.Observe(float64(d.Microseconds()))
}

// RecordAdjustment counts an adjustment phase transition.
func RecordAdjustment(phase string) {
	globalManager.adjustments.WithLabelValues(phase).Inc()
}

// UpdateRankedItems sets the ranked item gauge.
func UpdateRankedItems(count int) {
	globalManager.rankedItems.Set(float64(count))
}

// UpdateTotalItems sets the catalog size gauge.
func UpdateTotalItems(count int) {
	globalManager.totalItems.Set(float64(count))
}

// UpdateFrozen flags whether the display order is frozen.
func UpdateFrozen(frozen bool) {
	if frozen {
		globalManager.frozen.Set(1)
		return
	}
	globalManager.frozen.Set(0)
}

// Graph projection.

// RecordGraphBuild counts a graph projection of the given kind.
func RecordGraphBuild(kind string) {
	globalManager.graphBuilds.WithLabelValues(kind).Inc()
}

// UpdateGraphSize records the size of the last knowledge graph.
func UpdateGraphSize(entities, relations int) {
	globalManager.graphEntities.Set(float64(entities))
	globalManager.graphRelations.Set(float64(relations))
}

// RecordGraphBuildLatency records knowledge graph build latency.
func RecordGraphBuildLatency(latencyMs float64) {
	globalManager.graphBuildLatency.Observe(latencyMs)
}

// RecordExport counts a served export document and its size.
func RecordExport(artifact string, size int) {
	globalManager.exportsServed.WithLabelValues(artifact).Inc()
	globalManager.exportBytesObserved.Observe(float64(size))
}

// Edit preparation.

// RecordPreparation counts a preparation outcome.
func RecordPreparation(outcome string) {
	globalManager.preparations.WithLabelValues(outcome).Inc()
}

// RecordPreparationLatency records the latency of a preparation call.
func RecordPreparationLatency(latencyMs float64) {
	globalManager.preparationLatency.Observe(latencyMs)
}

// UpdatePreparedOperations records the operation summary of the last prepared edit.
func UpdatePreparedOperations(total, entities, properties, relations int) {
	globalManager.preparedOperations.WithLabelValues("total").Set(float64(total))
	globalManager.preparedOperations.WithLabelValues("entity").Set(float64(entities))
	globalManager.preparedOperations.WithLabelValues("property").Set(float64(properties))
	globalManager.preparedOperations.WithLabelValues("relation").Set(float64(relations))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Errors.

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

// System.

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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
