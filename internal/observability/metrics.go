// Package observability exposes Prometheus metrics for the HTTP surface and
// the sale workflow.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	salesCreated      prometheus.Counter
	stockDecrements   prometheus.Counter
	insufficientStock prometheus.Counter
}

// NewMetrics initialises the registry with the base HTTP metrics plus the
// sale workflow counters.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "almacen_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "almacen_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	salesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "almacen_sales_created_total",
		Help: "Sales persisted successfully.",
	})
	stockDecrements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "almacen_stock_decrements_total",
		Help: "Product stock decrements applied by the sale workflow.",
	})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "almacen_insufficient_stock_total",
		Help: "Sale attempts rejected for insufficient stock.",
	})
	registry.MustRegister(requests, duration, salesCreated, stockDecrements, insufficientStock)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		salesCreated:      salesCreated,
		stockDecrements:   stockDecrements,
		insufficientStock: insufficientStock,
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

// Middleware records request counts and durations per chi route pattern.
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

// SaleCreated increments the sale counter. Nil-safe so services can run
// without metrics in tests.
func (m *Metrics) SaleCreated(lineItems int) {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
	m.stockDecrements.Add(float64(lineItems))
}

// InsufficientStock counts a rejected sale attempt.
func (m *Metrics) InsufficientStock() {
	if m == nil {
		return
	}
	m.insufficientStock.Inc()
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
