package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsMonitoringMetrics(t *testing.T) {
	c := NewCollector("xhs_monitor")

	c.RecordPass("done")
	c.RecordPass("done")
	c.RecordPass("failed")
	c.RecordInvalidation()
	c.RecordSave(12, 3)
	c.SetLiveSessions(4)
	c.RecordPlatformRequest("comment_page", "ok", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Passes.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Passes.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SessionsInvalidated))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.CommentsInserted))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.CommentsSkipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.LiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PlatformRequests.WithLabelValues("comment_page", "ok")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordPass("done")
		c.RecordInvalidation()
		c.RecordSave(1, 1)
		c.SetLiveSessions(1)
		c.RecordPlatformRequest("feed", "ok", time.Second)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	c := NewCollector("xhs_monitor")

	e := echo.New()
	e.Use(c.Middleware())
	e.GET("/api/health", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(c.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues(http.MethodGet, "/api/health", "200")))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "xhs_monitor_http_requests_total")
}
