package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	LikeTogglesTotal         *prometheus.CounterVec
	RoleReconciliationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LikeTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "news_like_toggles_total",
				Help: "Total number of like toggles by outcome",
			},
			[]string{"outcome"},
		),
		RoleReconciliationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "role_reconciliations_total",
				Help: "Total number of role reconciliations by trigger and result",
			},
			[]string{"trigger", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LikeTogglesTotal,
		m.RoleReconciliationsTotal,
	)

	return m
}

func (m *Metrics) RecordLikeToggle(outcome string) {
	if m == nil {
		return
	}
	m.LikeTogglesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReconciliation(trigger, result string) {
	if m == nil {
		return
	}
	m.RoleReconciliationsTotal.WithLabelValues(trigger, result).Inc()
}

// GinMiddleware instruments requests using the route template as the path
// label so ids do not explode cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
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
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
