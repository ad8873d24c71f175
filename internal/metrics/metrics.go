package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several engines can coexist in one process
// (tests build one per case). All methods are nil-safe.
type Metrics struct {
	reg *prometheus.Registry

	transitions   *prometheus.CounterVec
	cascadeSize   prometheus.Histogram
	guardWait     *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.SummaryVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Lifecycle commands by event and outcome kind",
		}, []string{"event", "outcome"}),
		cascadeSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "application_cascade_rejections",
			Help:    "Applications rejected by a capacity-exhausting accept",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		guardWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guard_wait_seconds",
			Help:    "Time spent acquiring concurrency guard locks",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"backend", "outcome"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "match_queries_total",
			Help: "Matching queries by name and outcome kind",
		}, []string{"query", "outcome"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "match_query_duration_seconds",
			Help:    "Matching query latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		httpDuration: f.NewSummaryVec(prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.transitions.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) ObserveCascade(n int) {
	if m == nil {
		return
	}
	m.cascadeSize.Observe(float64(n))
}

func (m *Metrics) ObserveGuardWait(backend string, d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	outcome := "acquired"
	if !acquired {
		outcome = "failed"
	}
	m.guardWait.WithLabelValues(backend, outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveQuery(query, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.queries.WithLabelValues(query, outcome).Inc()
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
