// Package observability exposes the Prometheus metrics of the monitor.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Monitoring metrics
	Passes              *prometheus.CounterVec
	SessionsInvalidated prometheus.Counter
	CommentsInserted    prometheus.Counter
	CommentsSkipped     prometheus.Counter
	LiveSessions        prometheus.Gauge

	// Platform metrics
	PlatformRequests *prometheus.CounterVec
	PlatformDuration *prometheus.HistogramVec
}

// NewCollector creates a collector on its own registry so tests can build as many as they need.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Total number of per-target monitoring passes by final state",
			},
			[]string{"state"},
		),
		SessionsInvalidated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_invalidated_total",
				Help:      "Total number of sessions rejected by the platform",
			},
		),
		CommentsInserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_inserted_total",
				Help:      "Total number of comments written to storage",
			},
		),
		CommentsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_skipped_total",
				Help:      "Total number of comments skipped as already stored",
			},
		),
		LiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_sessions",
				Help:      "Number of live sessions in the pool",
			},
		),
		PlatformRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "platform_requests_total",
				Help:      "Total number of platform API requests",
			},
			[]string{"endpoint", "outcome"},
		),
		PlatformDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "platform_request_duration_seconds",
				Help:      "Platform API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Passes,
		c.SessionsInvalidated,
		c.CommentsInserted,
		c.CommentsSkipped,
		c.LiveSessions,
		c.PlatformRequests,
		c.PlatformDuration,
	)

	return c
}

// Registry returns the registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) RecordPass(state string) {
	if c == nil {
		return
	}
	c.Passes.WithLabelValues(state).Inc()
}

func (c *Collector) RecordInvalidation() {
	if c == nil {
		return
	}
	c.SessionsInvalidated.Inc()
}

func (c *Collector) RecordSave(inserted, skipped int) {
	if c == nil {
		return
	}
	c.CommentsInserted.Add(float64(inserted))
	c.CommentsSkipped.Add(float64(skipped))
}

func (c *Collector) SetLiveSessions(n int) {
	if c == nil {
		return
	}
	c.LiveSessions.Set(float64(n))
}

func (c *Collector) RecordPlatformRequest(endpoint, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.PlatformRequests.WithLabelValues(endpoint, outcome).Inc()
	c.PlatformDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Middleware records request counts and latencies per route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c == nil {
				return next(ctx)
			}
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method

			c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
