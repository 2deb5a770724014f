package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/monitor"
)

type TargetHandler struct {
	svc monitor.MonitorService
}

func NewTargetHandler(svc monitor.MonitorService) *TargetHandler {
	return &TargetHandler{svc: svc}
}

// AddTarget godoc
// @Summary Subscribe to a post
// @Description Adds a post URL (discovery or explore shape) to the user's monitor targets
// @Tags targets
// @Accept json
// @Produce json
// @Param request body models.TargetRequest true "User and post URL"
// @Success 201 {object} models.Target
// @Failure 400 {object} models.HTTPError
// @Failure 500 {object} models.HTTPError
// @Router /api/targets [post]
func (h *TargetHandler) AddTarget(c echo.Context) error {
	var req models.TargetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	target, err := h.svc.AddTarget(c.Request().Context(), req.Email, req.URL)
	if errors.Is(err, apperrors.ErrInvalidURL) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, target)
}

// ListTargets godoc
// @Summary List a user's targets
// @Tags targets
// @Produce json
// @Param email query string true "Subscribing user"
// @Success 200 {array} models.Target
// @Failure 400 {object} models.HTTPError
// @Failure 500 {object} models.HTTPError
// @Router /api/targets [get]
func (h *TargetHandler) ListTargets(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing `email` parameter")
	}

	targets, err := h.svc.ListTargets(c.Request().Context(), email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if targets == nil {
		targets = []models.Target{}
	}
	return c.JSON(http.StatusOK, targets)
}
