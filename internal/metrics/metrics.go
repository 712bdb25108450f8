// Package metrics holds the Prometheus collectors of the generapi service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "generapi"

// Metrics is a set of collectors registered on a private registry, so several
// instances can live in one process (tests, embedded servers).
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	ScaffoldsTotal *prometheus.CounterVec
	ScaffoldFiles  prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RendersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Blueprint renders by top-level blueprint and result",
			},
			[]string{"blueprint", "result"},
		),
		RenderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Blueprint render duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"blueprint"},
		),
		ScaffoldsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scaffolds_total",
				Help:      "Scaffold generations by result",
			},
			[]string{"result"},
		),
		ScaffoldFiles: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scaffold_files",
				Help:      "Number of files per generated scaffold",
				Buckets:   prometheus.LinearBuckets(5, 5, 10),
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRender records one render. Its signature matches scaffold.Observer.
func (m *Metrics) ObserveRender(blueprintID string, took time.Duration, ok bool) {
	m.RendersTotal.WithLabelValues(blueprintID, result(ok)).Inc()
	m.RenderDuration.WithLabelValues(blueprintID).Observe(took.Seconds())
}

// ObserveScaffold records one Generate call; files is ignored on failure.
func (m *Metrics) ObserveScaffold(files int, ok bool) {
	m.ScaffoldsTotal.WithLabelValues(result(ok)).Inc()
	if ok {
		m.ScaffoldFiles.Observe(float64(files))
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, took time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// Middleware records every request. Unmatched routes share the "unmatched" path label
// to keep cardinality bounded.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
