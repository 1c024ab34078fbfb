// Package metrics provides Prometheus metrics for the excess mortality engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the engine exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	rowsIngested  prometheus.Counter
	rowsRejected  *prometheus.CounterVec
	countriesKept prometheus.Gauge

	// Baseline modelling
	baselineFits              *prometheus.CounterVec
	candidateWindows          prometheus.Gauge
	candidateWindowsEvaluated prometheus.Counter
	selectionRMSE             prometheus.Gauge
	selectionDuration         prometheus.Histogram
	analysisRuns              *prometheus.CounterVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount          prometheus.Gauge
	workerEvaluationsPerSecond prometheus.Gauge
	workerProcessingLatency    prometheus.Histogram
	workerErrors               prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "excess",
		subsystem:        "engine",
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.rowsIngested = m.counter("rows_ingested_total", "Rows accepted after ASMR standardization")
	m.rowsRejected = m.counterVec("rows_rejected_total", "Rows discarded during standardization", "reason")
	m.countriesKept = m.gauge("countries_kept", "Countries retained after coverage filtering")

	m.baselineFits = m.counterVec("baseline_fits_total", "Baseline fits by outcome", "outcome")
	m.candidateWindows = m.gauge("candidate_windows", "Candidate windows in the last grid search")
	m.candidateWindowsEvaluated = m.counter("candidate_windows_evaluated_total", "Candidate windows scored")
	m.selectionRMSE = m.gauge("selection_rmse", "RMSE of the selected baseline over the evaluation period")
	m.selectionDuration = m.histogram("selection_duration_milliseconds", "Grid search duration in milliseconds",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
	m.analysisRuns = m.counterVec("analysis_runs_total", "Analysis runs by outcome", "outcome")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the evaluation queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the evaluation queue")
	m.queueUtilization = m.gauge("queue_utilization", "Queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs that could not be enqueued")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Time spent enqueueing a job", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Workers in the evaluation pool")
	m.workerEvaluationsPerSecond = m.gauge("worker_evaluations_per_second", "Candidate evaluations per second")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to fit and score one candidate", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Worker failures")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRowsIngested adds n accepted rows.
func RecordRowsIngested(n int) {
	globalManager.rowsIngested.Add(float64(n))
}

// RecordRowsRejected adds n rejected rows under reason.
func RecordRowsRejected(reason string, n int) {
	globalManager.rowsRejected.WithLabelValues(reason).Add(float64(n))
}

// UpdateCountriesKept sets the retained country count.
func UpdateCountriesKept(n int) {
	globalManager.countriesKept.Set(float64(n))
}

// RecordBaselineFit counts one fit with outcome ok, insufficient_data, degenerate or error.
func RecordBaselineFit(outcome string) {
	globalManager.baselineFits.WithLabelValues(outcome).Inc()
}

// UpdateCandidateWindows sets the size of the current grid.
func UpdateCandidateWindows(n int) {
	globalManager.candidateWindows.Set(float64(n))
}

// RecordCandidateEvaluated counts one scored window.
func RecordCandidateEvaluated() {
	globalManager.candidateWindowsEvaluated.Inc()
}

// UpdateSelectionRMSE sets the RMSE of the selected baseline.
func UpdateSelectionRMSE(v float64) {
	globalManager.selectionRMSE.Set(v)
}

// RecordSelectionDuration observes a grid search duration.
func RecordSelectionDuration(ms float64) {
	globalManager.selectionDuration.Observe(ms)
}

// RecordAnalysisRun counts one analysis run.
func RecordAnalysisRun(outcome string) {
	globalManager.analysisRuns.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets size over capacity.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency observes enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the pool size.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerEvaluationsPerSecond sets the evaluation throughput.
func UpdateWorkerEvaluationsPerSecond(rate float64) {
	globalManager.workerEvaluationsPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency observes one evaluation.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method string, statusCode int) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error returned by an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
