// Package metrics exposes Prometheus instrumentation for the export engine
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the metric vectors and their registry. Each Recorder is
// self-contained, so servers and tests construct them independently without
// colliding in a global registry.
type Recorder struct {
	registry       *prometheus.Registry
	exportsTotal   *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

// NewRecorder returns a Recorder with all vectors registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		exportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jex_exports_total",
			Help: "Exports attempted, by format and outcome.",
		}, []string{"format", "outcome"}),
		exportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jex_export_duration_seconds",
			Help:    "Time to assemble and render one issue export.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jex_http_requests_total",
			Help: "HTTP requests served, by method, path, and status.",
		}, []string{"method", "path", "status"}),
	}
}

// ObserveExport records one export attempt and its duration.
func (r *Recorder) ObserveExport(format string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.exportsTotal.WithLabelValues(format, outcome).Inc()
	r.exportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, path string, status int) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
