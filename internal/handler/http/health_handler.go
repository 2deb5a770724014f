package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/monitor"
)

type HealthHandler struct {
	svc monitor.MonitorService
}

func NewHealthHandler(svc monitor.MonitorService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health godoc
// @Summary Service health
// @Description Pings the store and reports the live session count
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := h.svc.Health(ctx)
	if resp.Status != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
