// Package metrics provides Prometheus metrics for the teamfit matching service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	matchesScored  prometheus.Counter
	scoringLatency prometheus.Histogram
	scoringErrors  prometheus.Counter

	// Ranking
	rankingScans    *prometheus.CounterVec
	rankingLatency  *prometheus.HistogramVec
	rankingExcluded *prometheus.CounterVec

	// Embedding
	embeddingLatency *prometheus.HistogramVec
	embeddingErrors  *prometheus.CounterVec
	embeddingSkipped prometheus.Counter

	// Task queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	tasksFinished           *prometheus.CounterVec

	// Vector store
	vectorRecords      *prometheus.GaugeVec
	vectorUpserts      *prometheus.CounterVec
	vectorQueryLatency prometheus.Histogram

	// Team derived state
	teamRecomputes *prometheus.CounterVec
	teamCacheHits  prometheus.Counter

	// Catalog and evaluation board
	entities           *prometheus.GaugeVec
	evaluationsRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teamfit",
		subsystem:        "matching",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.matchesScored = m.counter("matches_scored_total", "Total number of team/project pairs scored")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Latency of a single hybrid score computation in milliseconds")
	m.scoringErrors = m.counter("scoring_errors_total", "Total number of failed score computations")

	m.rankingScans = m.counterVec("ranking_scans_total", "Ranking scans by direction", "direction")
	m.rankingLatency = m.histogramVec("ranking_latency_milliseconds", "Ranking scan latency in milliseconds", "direction")
	m.rankingExcluded = m.counterVec("ranking_excluded_candidates_total", "Candidates skipped during ranking because they vanished mid-scan", "direction")

	m.embeddingLatency = m.histogramVec("embedding_latency_milliseconds", "Embedding inference latency in milliseconds", "backend")
	m.embeddingErrors = m.counterVec("embedding_errors_total", "Embedding failures by backend and kind", "backend", "error_type")
	m.embeddingSkipped = m.counter("embedding_skipped_total", "Ingestions whose text was unchanged so inference was skipped")

	m.queueSize = m.gauge("queue_size", "Current number of pending embedding tasks")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum embedding task queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of tasks enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of tasks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Number of embedding workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one task in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed tasks")
	m.tasksFinished = m.counterVec("tasks_finished_total", "Tasks reaching a terminal status", "status")

	m.vectorRecords = m.gaugeVec("vector_records", "Stored vectors by entity kind", "kind")
	m.vectorUpserts = m.counterVec("vector_upserts_total", "Vector upserts by entity kind", "kind")
	m.vectorQueryLatency = m.histogram("vector_query_latency_milliseconds", "Vector similarity query latency in milliseconds")

	m.teamRecomputes = m.counterVec("team_recomputes_total", "Team derived state recomputations by invalidation reason", "reason")
	m.teamCacheHits = m.counter("team_cache_hits_total", "Team profile reads served from a valid cache entry")

	m.entities = m.gaugeVec("entities", "Catalog size by entity kind", "kind")
	m.evaluationsRecords = m.gauge("evaluation_records", "Number of persisted team evaluations")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
}

// RecordMatchScored records one successful score and its latency.
func RecordMatchScored(latencyMs float64) {
	globalManager.matchesScored.Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring error counter.
func RecordScoringError() { globalManager.scoringErrors.Inc() }

// RecordRankingScan records a completed ranking scan.
func RecordRankingScan(direction string, latencyMs float64) {
	globalManager.rankingScans.WithLabelValues(direction).Inc()
	globalManager.rankingLatency.WithLabelValues(direction).Observe(latencyMs)
}

// RecordRankingExcluded counts a candidate dropped from a ranking scan.
func RecordRankingExcluded(direction string) {
	globalManager.rankingExcluded.WithLabelValues(direction).Inc()
}

// RecordEmbeddingLatency observes inference latency for a backend.
func RecordEmbeddingLatency(backend string, latencyMs float64) {
	globalManager.embeddingLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordEmbeddingError counts an embedding failure.
func RecordEmbeddingError(backend, errorType string) {
	globalManager.embeddingErrors.WithLabelValues(backend, errorType).Inc()
}

// RecordEmbeddingSkipped counts an ingestion that did not need inference.
func RecordEmbeddingSkipped() { globalManager.embeddingSkipped.Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueueTotal.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeueTotal.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records how long a worker spent on a task.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordTaskFinished counts a task reaching a terminal status.
func RecordTaskFinished(status string) { globalManager.tasksFinished.WithLabelValues(status).Inc() }

// UpdateVectorRecords sets the number of stored vectors for a kind.
func UpdateVectorRecords(kind string, count int) {
	globalManager.vectorRecords.WithLabelValues(kind).Set(float64(count))
}

// RecordVectorUpsert counts a vector upsert.
func RecordVectorUpsert(kind string) { globalManager.vectorUpserts.WithLabelValues(kind).Inc() }

// RecordVectorQueryLatency observes similarity query latency.
func RecordVectorQueryLatency(latencyMs float64) { globalManager.vectorQueryLatency.Observe(latencyMs) }

// RecordTeamRecompute counts a team derived state recomputation.
func RecordTeamRecompute(reason string) { globalManager.teamRecomputes.WithLabelValues(reason).Inc() }

// RecordTeamCacheHit counts a profile read served from cache.
func RecordTeamCacheHit() { globalManager.teamCacheHits.Inc() }

// UpdateEntities sets the catalog size for a kind.
func UpdateEntities(kind string, count int) {
	globalManager.entities.WithLabelValues(kind).Set(float64(count))
}

// UpdateEvaluationRecords sets the number of persisted evaluations.
func UpdateEvaluationRecords(count int) { globalManager.evaluationsRecords.Set(float64(count)) }

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
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
