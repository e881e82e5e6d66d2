package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all production-service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Import metrics
	ImportJobsTotal       *prometheus.CounterVec
	ImportDuration        prometheus.Histogram
	CasesImported         prometheus.Counter
	CaseRowsDropped       prometheus.Counter
	CasesDeleted          prometheus.Counter
	WriteStrategySelected *prometheus.CounterVec

	// Consumption metrics
	ConsumptionEntries *prometheus.CounterVec

	// Blob cleanup metrics
	BlobCleanups *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "production",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	m.ImportJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "import_jobs_total",
			Help:      "Total number of bulk import jobs by terminal status",
		},
		[]string{"service", "status"},
	)

	m.ImportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "import_duration_seconds",
			Help:        "Wall-clock duration of bulk import jobs",
			Buckets:     []float64{.1, .5, 1, 5, 10, 20, 30, 45, 60, 90},
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.CasesImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "cases_imported_total",
			Help:        "Total number of case records written by bulk import",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.CaseRowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "case_rows_dropped_total",
			Help:        "Total number of case rows dropped by import validation",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.CasesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "cases_deleted_total",
			Help:        "Total number of case records removed by bulk deletion",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.WriteStrategySelected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "write_strategy_selected_total",
			Help:      "Write coordinator strategy chosen per import job",
		},
		[]string{"service", "strategy"},
	)

	m.ConsumptionEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "consumption_entries_total",
			Help:      "Consumption ledger entries by type and outcome",
		},
		[]string{"service", "type", "outcome"},
	)

	m.BlobCleanups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "blob_cleanups_total",
			Help:      "Source-file blob deletions by outcome",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.ImportJobsTotal,
		m.ImportDuration,
		m.CasesImported,
		m.CaseRowsDropped,
		m.CasesDeleted,
		m.WriteStrategySelected,
		m.ConsumptionEntries,
		m.BlobCleanups,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordImportJob records a finished import job
func (m *Metrics) RecordImportJob(status string, processed int, duration time.Duration) {
	m.ImportJobsTotal.WithLabelValues(m.serviceName, status).Inc()
	m.ImportDuration.Observe(duration.Seconds())
	m.CasesImported.Add(float64(processed))
}

// RecordWriteStrategy records the strategy selected for an import job
func (m *Metrics) RecordWriteStrategy(strategy string) {
	m.WriteStrategySelected.WithLabelValues(m.serviceName, strategy).Inc()
}

// RecordConsumptionEntry records a consumption ledger entry outcome
func (m *Metrics) RecordConsumptionEntry(entryType, outcome string) {
	m.ConsumptionEntries.WithLabelValues(m.serviceName, entryType, outcome).Inc()
}

// RecordBlobCleanup records a blob deletion outcome
func (m *Metrics) RecordBlobCleanup(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.BlobCleanups.WithLabelValues(m.serviceName, outcome).Inc()
}
