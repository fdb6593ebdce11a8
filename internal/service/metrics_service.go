package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "schooldb"

// Circulation outcomes reported to RecordCirculation.
const (
	BorrowOutcomeAccepted = "accepted"
	BorrowOutcomeRejected = "rejected"
	BorrowOutcomeReturned = "returned"
	BorrowOutcomeNoop     = "noop"
)

// MetricsService owns the process registry. A nil *MetricsService is a
// valid no-op recorder.
type MetricsService struct {
	registry    *prometheus.Registry
	handler     http.Handler
	httpLatency *prometheus.HistogramVec
	httpTotal   *prometheus.CounterVec
	queryTime   *prometheus.HistogramVec
	circulation *prometheus.CounterVec
	exports     *prometheus.CounterVec
	exportRows  *prometheus.HistogramVec
}

func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status.",
		}, []string{"method", "route", "status"}),
		queryTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "db_query_duration_seconds",
			Help:      "Latency of instrumented report queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		circulation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "library",
			Name:      "circulation_total",
			Help:      "Borrow and return attempts by outcome.",
		}, []string{"outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "Rendered report downloads.",
		}, []string{"report", "format"}),
		exportRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "export_rows",
			Help:      "Rows per rendered report.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 6),
		}, []string{"report"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpLatency, m.httpTotal, m.queryTime, m.circulation, m.exports, m.exportRows,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpLatency.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, route, code).Inc()
}

func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queryTime.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordCirculation counts a borrow or return outcome.
func (m *MetricsService) RecordCirculation(outcome string) {
	if m == nil {
		return
	}
	m.circulation.WithLabelValues(outcome).Inc()
}

// RecordExport counts a rendered download and its size in rows.
func (m *MetricsService) RecordExport(report, format string, rows int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(report, format).Inc()
	m.exportRows.WithLabelValues(report).Observe(float64(rows))
}
