package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/models"
	"xhs-monitor/internal/monitor"
)

type SessionHandler struct {
	svc monitor.MonitorService
}

func NewSessionHandler(svc monitor.MonitorService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// AddSession godoc
// @Summary Provision a session
// @Description Stores a platform cookie string for use by monitoring passes
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body models.SessionRequest true "Cookie string"
// @Success 201 {object} models.SessionResponse
// @Failure 400 {object} models.HTTPError
// @Failure 500 {object} models.HTTPError
// @Router /api/sessions [post]
func (h *SessionHandler) AddSession(c echo.Context) error {
	var req models.SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	alive := true
	if req.Alive != nil {
		alive = *req.Alive
	}

	ctx := c.Request().Context()
	sess, err := h.svc.AddSession(ctx, req.Value, alive)
	if errors.Is(err, monitor.ErrInvalidSession) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	live, err := h.svc.CountLiveSessions(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, models.SessionResponse{ID: sess.ID, LiveSessions: live})
}

// CountSessions godoc
// @Summary Count live sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {object} models.HTTPError
// @Router /api/sessions/count [get]
func (h *SessionHandler) CountSessions(c echo.Context) error {
	n, err := h.svc.CountLiveSessions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"live_sessions": n})
}

// ListSessions godoc
// @Summary List sessions
// @Description Lists every provisioned session with its liveness. Cookie values are never returned.
// @Tags sessions
// @Produce json
// @Success 200 {array} models.Session
// @Failure 500 {object} models.HTTPError
// @Router /api/sessions [get]
func (h *SessionHandler) ListSessions(c echo.Context) error {
	sessions, err := h.svc.ListSessions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}
