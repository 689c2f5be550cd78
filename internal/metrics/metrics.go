// Package metrics exposes Prometheus instrumentation for the engine and the
// HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

// Metrics implements engine.Observer
type Metrics struct {
	registry *prometheus.Registry

	interpolations   *prometheus.CounterVec
	interpolationDur *prometheus.HistogramVec
	fetchDuration    *prometheus.HistogramVec
	fetchErrors      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

// New creates metrics on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		interpolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interpolations_total",
			Help: "Interpolation requests by category and outcome.",
		}, []string{"category", "outcome"}),
		interpolationDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interpolation_duration_seconds",
			Help:    "Interpolation latency by category.",
			Buckets: prometheus.DefBuckets,
		}, []string{"category"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "climate_fetch_duration_seconds",
			Help:    "Latency of single-month climate fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"category"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "climate_fetch_errors_total",
			Help: "Failed climate fetches by error type.",
		}, []string{"category", "type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		m.interpolations,
		m.interpolationDur,
		m.fetchDuration,
		m.fetchErrors,
		m.httpRequests,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveInterpolation records one interpolation outcome
func (m *Metrics) ObserveInterpolation(category types.Category, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.interpolations.WithLabelValues(category.String(), outcome).Inc()
	m.interpolationDur.WithLabelValues(category.String()).Observe(duration.Seconds())
}

// ObserveFetch records one climate fetch
func (m *Metrics) ObserveFetch(category types.Category, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(category.String()).Observe(duration.Seconds())
	if err != nil {
		t := string(errors.TypeOf(err))
		if t == "" {
			t = "other"
		}
		m.fetchErrors.WithLabelValues(category.String(), t).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests to route by response status
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		if m != nil {
			m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		}
	})
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
