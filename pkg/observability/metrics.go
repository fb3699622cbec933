package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Check metrics
	ChecksTotal     *prometheus.CounterVec
	CheckDuration   *prometheus.HistogramVec
	FindingsTotal   *prometheus.CounterVec
	ParseDuration   *prometheus.HistogramVec
	ParseErrorTotal *prometheus.CounterVec
	ModelClasses    *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Storage metrics
	StorageOperationsTotal   *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics. A nil registry
// gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apicheck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_checks_total",
				Help: "Total number of compatibility checks",
			},
			[]string{"result"},
		),
		CheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apicheck_check_duration_seconds",
				Help:    "Compatibility check duration in seconds, parse included",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"result"},
		),
		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_findings_total",
				Help: "Total number of classified findings",
			},
			[]string{"kind", "severity"},
		),
		ParseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apicheck_parse_duration_seconds",
				Help:    "Snapshot parse duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"side"},
		),
		ParseErrorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_parse_errors_total",
				Help: "Total number of snapshots rejected by the parser",
			},
			[]string{"side"},
		),
		ModelClasses: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apicheck_model_classes",
				Help: "Number of declared types in the most recently loaded model",
			},
			[]string{"side"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_cache_hits_total",
				Help: "Total number of model cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_cache_misses_total",
				Help: "Total number of model cache misses",
			},
			[]string{"cache_type"},
		),

		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicheck_storage_operations_total",
				Help: "Total number of baseline storage operations",
			},
			[]string{"operation", "backend", "status"},
		),
		StorageOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apicheck_storage_operation_duration_seconds",
				Help:    "Baseline storage operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChecksTotal,
		m.CheckDuration,
		m.FindingsTotal,
		m.ParseDuration,
		m.ParseErrorTotal,
		m.ModelClasses,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.StorageOperationsTotal,
		m.StorageOperationDuration,
	)

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCheck records the outcome of one compatibility check. result is one
// of "pass", "fail" or "error".
func (m *Metrics) RecordCheck(result string, duration time.Duration) {
	m.ChecksTotal.WithLabelValues(result).Inc()
	m.CheckDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordFinding counts one classified finding.
func (m *Metrics) RecordFinding(kind, severity string) {
	m.FindingsTotal.WithLabelValues(kind, severity).Inc()
}

// RecordParse records a snapshot parse for the "old" or "new" side.
func (m *Metrics) RecordParse(side string, classes int, duration time.Duration, err error) {
	m.ParseDuration.WithLabelValues(side).Observe(duration.Seconds())
	if err != nil {
		m.ParseErrorTotal.WithLabelValues(side).Inc()
		return
	}
	m.ModelClasses.WithLabelValues(side).Set(float64(classes))
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHitsTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMissesTotal.WithLabelValues(cacheType).Inc()
}

// RecordStorageOperation records storage operation metrics
func (m *Metrics) RecordStorageOperation(operation, backend string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StorageOperationsTotal.WithLabelValues(operation, backend, status).Inc()
	m.StorageOperationDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}
