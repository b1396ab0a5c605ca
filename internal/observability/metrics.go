// Package observability exposes Prometheus metrics for the HTTP API and the core services.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application. It satisfies the
// observer interfaces of inventory, supplies and finance.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	stockAdjustments *prometheus.CounterVec
	suppliesCreated  prometheus.Counter
	reportBuilds     *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmanage_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productmanage_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmanage_stock_adjustments_total",
		Help: "Stock adjustments by outcome.",
	}, []string{"outcome"})
	supplies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "productmanage_supplies_created_total",
		Help: "Supplies committed together with their stock receipts.",
	})
	reports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmanage_finance_report_builds_total",
		Help: "Financial reports served, by cache outcome.",
	}, []string{"cache"})
	registry.MustRegister(
		requests, duration, adjustments, supplies, reports,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		stockAdjustments: adjustments,
		suppliesCreated:  supplies,
		reportBuilds:     reports,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// StockAdjusted counts one stock adjustment outcome.
func (m *Metrics) StockAdjusted(outcome string) {
	if m == nil {
		return
	}
	m.stockAdjustments.WithLabelValues(outcome).Inc()
}

// SupplyCreated counts a committed supply.
func (m *Metrics) SupplyCreated() {
	if m == nil {
		return
	}
	m.suppliesCreated.Inc()
}

// ReportBuilt counts a served financial report.
func (m *Metrics) ReportBuilt(cacheHit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.reportBuilds.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
