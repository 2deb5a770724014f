// Package http holds the echo handlers of the monitoring API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/models"
	"xhs-monitor/internal/monitor"
)

type MonitorHandler struct {
	svc     monitor.MonitorService
	timeout time.Duration
}

// DefaultMonitorTimeout bounds a monitor request when no timeout is configured.
const DefaultMonitorTimeout = 30 * time.Minute

// NewMonitorHandler serves monitoring passes. timeout covers the whole request across all of
// the user's targets; each target still gets its own per-target budget inside the service.
func NewMonitorHandler(svc monitor.MonitorService, timeout time.Duration) *MonitorHandler {
	if timeout <= 0 {
		timeout = DefaultMonitorTimeout
	}
	return &MonitorHandler{svc: svc, timeout: timeout}
}

// RunMonitor godoc
// @Summary Run a monitoring pass
// @Description Checks every post the user subscribed to and stores comments on posts whose comment count changed
// @Tags monitor
// @Accept json
// @Produce json
// @Param request body models.MonitorRequest true "User and keyword"
// @Success 200 {object} models.PassResult
// @Failure 400 {object} models.HTTPError
// @Failure 500 {object} models.PassResult
// @Router /api/monitor [post]
func (h *MonitorHandler) RunMonitor(c echo.Context) error {
	var req models.MonitorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result := h.svc.RunMonitorPass(ctx, req.Email, req.Keyword)
	if !result.Success {
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}
