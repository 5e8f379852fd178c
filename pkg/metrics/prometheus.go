// Package metrics provides Prometheus metrics for the codex collection service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the collection service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Collection metrics
	collectionEntries  prometheus.Gauge
	eligibleEntries    prometheus.Gauge
	eligibilityChanges *prometheus.CounterVec
	advances           prometheus.Counter
	advancesRejected   *prometheus.CounterVec
	groupPublishes     *prometheus.CounterVec
	subscriptions      *prometheus.GaugeVec
	ledgerPushes       *prometheus.CounterVec

	// Inventory metrics
	levelUps          prometheus.Counter
	levelUpDuplicates prometheus.Counter
	levelUpErrors     *prometheus.CounterVec
	feedClients       prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository metrics
	repositoryRecordsTotal  prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
	Configure()
}

// Configure rebuilds the global collectors on a fresh registry. Call it at
// startup, before GetRegistry is served and before any recorder runs.
func Configure(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = newManager(append([]Option{withRegisterer(customRegistry)}, opts...)...)
}

// newManager registers every collector on the configured registry.
func newManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "codex",
		subsystem:        "collection",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one registration per metric
	auto := promauto.With(m.registry)

	// Collection metrics
	m.collectionEntries = auto.NewGauge(m.gaugeOpts("entries", "Number of collection entries loaded"))
	m.eligibleEntries = auto.NewGauge(m.gaugeOpts("eligible_entries", "Number of entries that may advance (badge count)"))
	m.eligibilityChanges = auto.NewCounterVec(
		m.counterOpts("eligibility_changes_total", "Eligibility flag transitions by new value"),
		[]string{"eligible"},
	)
	m.advances = auto.NewCounter(m.counterOpts("advances_total", "Total number of tier advances"))
	m.advancesRejected = auto.NewCounterVec(
		m.counterOpts("advances_rejected_total", "Advance requests rejected by reason"),
		[]string{"reason"},
	)
	m.groupPublishes = auto.NewCounterVec(
		m.counterOpts("group_publishes_total", "Group notifications published by channel"),
		[]string{"channel"},
	)
	m.subscriptions = auto.NewGaugeVec(
		m.gaugeOpts("subscriptions", "Entries attached to each notification channel"),
		[]string{"channel"},
	)
	m.ledgerPushes = auto.NewCounterVec(
		m.counterOpts("ledger_pushes_total", "Stat changes pushed to the status ledger by stat channel"),
		[]string{"channel"},
	)

	// Inventory metrics
	m.levelUps = auto.NewCounter(m.counterOpts("level_ups_total", "Total number of item level-ups applied"))
	m.levelUpDuplicates = auto.NewCounter(m.counterOpts("level_up_duplicates_total", "Level-up events dropped as duplicates"))
	m.levelUpErrors = auto.NewCounterVec(
		m.counterOpts("level_up_errors_total", "Level-up events that failed by reason"),
		[]string{"reason"},
	)
	m.feedClients = auto.NewGauge(m.gaugeOpts("feed_clients", "Connected notification feed clients"))

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	// Repository metrics
	m.repositoryRecordsTotal = auto.NewGauge(m.gaugeOpts("repository_records_total", "Number of progress keys stored"))
	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Progress save latency in milliseconds"))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Progress load latency in milliseconds"))

	// Queue metrics
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the level-up queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of messages enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of messages dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts("queue_processing_latency_milliseconds", "Time a message waited in the queue in milliseconds"))

	// Worker metrics
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of busy workers"))
	m.workerIdleCount = auto.NewGauge(m.gaugeOpts("worker_idle_count", "Number of idle workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	// Error metrics
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	// System metrics
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	gc := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gc.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gc)
}

// Collection metrics

// UpdateCollectionEntries sets the number of loaded entries.
func UpdateCollectionEntries(count int) {
	globalManager.collectionEntries.Set(float64(count))
}

// UpdateEligibleEntries sets the number of entries that may advance.
func UpdateEligibleEntries(count int) {
	globalManager.eligibleEntries.Set(float64(count))
}

// RecordEligibilityChange counts one eligibility flip.
func RecordEligibilityChange(eligible bool) {
	globalManager.eligibilityChanges.WithLabelValues(strconv.FormatBool(eligible)).Inc()
}

// RecordAdvance counts one tier advance.
func RecordAdvance() {
	globalManager.advances.Inc()
}

// RecordAdvanceRejected counts an advance refused for reason.
func RecordAdvanceRejected(reason string) {
	globalManager.advancesRejected.WithLabelValues(reason).Inc()
}

// RecordGroupPublish counts one group notification on channel.
func RecordGroupPublish(channel string) {
	globalManager.groupPublishes.WithLabelValues(channel).Inc()
}

// UpdateSubscriptions sets the subscriber count of channel.
func UpdateSubscriptions(channel string, count int) {
	globalManager.subscriptions.WithLabelValues(channel).Set(float64(count))
}

// RecordLedgerPush counts one stat change pushed on a ledger channel.
func RecordLedgerPush(channel string) {
	globalManager.ledgerPushes.WithLabelValues(channel).Inc()
}

// Inventory metrics

// RecordLevelUp counts one applied item level-up.
func RecordLevelUp() {
	globalManager.levelUps.Inc()
}

// RecordLevelUpDuplicate counts a level-up event dropped by dedupe.
func RecordLevelUpDuplicate() {
	globalManager.levelUpDuplicates.Inc()
}

// RecordLevelUpError counts a failed level-up event.
func RecordLevelUpError(reason string) {
	globalManager.levelUpErrors.WithLabelValues(reason).Inc()
}

// UpdateFeedClients sets the number of feed connections.
func UpdateFeedClients(count int) {
	globalManager.feedClients.Set(float64(count))
}

// HTTP metrics

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Repository metrics

// UpdateRepositoryRecordsTotal sets the number of stored progress keys.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records a save in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records a load in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Queue metrics

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue wait time in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker metrics

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the busy worker count.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the idle worker count.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records processing time in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a processing error.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error metrics

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics

// UpdateSystemMemoryUsage sets memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
