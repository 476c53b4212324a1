// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CatalogOperations   *prometheus.CounterVec
	ImageOperations     *prometheus.CounterVec
	ImageCleanupFailed  prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CatalogOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Total number of catalog service operations",
			},
			[]string{"operation", "outcome"},
		),
		ImageOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "image_store_operations_total",
				Help: "Total number of image store calls",
			},
			[]string{"operation", "outcome"},
		),
		ImageCleanupFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "image_cleanup_failures_total",
				Help: "Image deletions that failed and were skipped",
			},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) CatalogOp(op string, err error) {
	if m == nil {
		return
	}
	m.CatalogOperations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ImageOp(op string, err error) {
	if m == nil {
		return
	}
	m.ImageOperations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ImageCleanupFailure() {
	if m == nil {
		return
	}
	m.ImageCleanupFailed.Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
