package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLikeToggle("liked")
		m.RecordReconciliation("membership_add", "changed")
	})
}

func TestRecordDomainMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordLikeToggle("liked")
	m.RecordLikeToggle("liked")
	m.RecordLikeToggle("unliked")
	m.RecordReconciliation("role_assign", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LikeTogglesTotal.WithLabelValues("liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LikeTogglesTotal.WithLabelValues("unliked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleReconciliationsTotal.WithLabelValues("role_assign", "error")))
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/news/:id/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news/7/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/news/:id/", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}
