package observability

import (
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	reportsTotal     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_upstream_requests_total",
				Help: "Total HTTP requests issued to external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		reportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_commission_reports_total",
				Help: "Total commission report computations.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrUpstreamRequest counts one outbound request to an external service.
func (m *Metrics) IncrUpstreamRequest(service string) {
	m.upstreamRequests.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrReport increments the report counter with a status label.
func (m *Metrics) IncrReport(status string) {
	m.reportsTotal.WithLabelValues(status).Inc()
}

// GetOpsSnapshot returns current counter values for GET /v1/metrics/snapshot.
func (m *Metrics) GetOpsSnapshot() *domain.OpsSnapshot {
	// Prometheus counters expose cumulative values.
	totalReports := getCounterValue(m.reportsTotal, "success") +
		getCounterValue(m.reportsTotal, "error")
	errorCount := getCounterValue(m.reportsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "commissions")
	cacheMisses := getCounterValue(m.cacheMisses, "commissions")
	upstreamErrors := getCounterValue(m.externalErrors, "phorest") +
		getCounterValue(m.externalErrors, "supabase")
	upstreamRequests := getCounterValue(m.upstreamRequests, "phorest") +
		getCounterValue(m.upstreamRequests, "supabase")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalReports > 0 {
		errorRate = errorCount / totalReports
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.OpsSnapshot{
		TotalReports:     int64(totalReports),
		ErrorRate:        errorRate,
		CacheHitRate:     cacheHitRate,
		UpstreamErrors:   int64(upstreamErrors),
		UpstreamRequests: int64(upstreamRequests),
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
