// Package metrics exposes Prometheus collectors for the HTTP layer and the
// planning pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a registry so several instances can coexist in tests.
// A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	plansTotal      *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	cacheOperations *prometheus.CounterVec
	archiveFailures prometheus.Counter
}

// New creates a collector with Go runtime and process metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		plansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meal_plans_total",
				Help: "Planning runs by outcome",
			},
			[]string{"outcome"},
		),
		solveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meal_plan_build_duration_seconds",
				Help:    "Time spent building a plan, solve included",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"outcome"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meal_plan_cache_operations_total",
				Help: "Plan cache lookups and writes",
			},
			[]string{"operation", "result"},
		),
		archiveFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meal_plan_archive_failures_total",
				Help: "Plans that could not be copied to the archive",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// HTTPMiddleware records request counts and latency per route.
func (m *Collector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObservePlan records one planning run.
func (m *Collector) ObservePlan(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.plansTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// CacheLookup records a cache read.
func (m *Collector) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheOperations.WithLabelValues("get", result).Inc()
}

// CacheError records a failed cache operation.
func (m *Collector) CacheError(operation string) {
	if m == nil {
		return
	}
	m.cacheOperations.WithLabelValues(operation, "error").Inc()
}

// ArchiveFailed records a plan that could not be archived.
func (m *Collector) ArchiveFailed() {
	if m == nil {
		return
	}
	m.archiveFailures.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
