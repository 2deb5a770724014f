package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/locator"
	"xhs-monitor/internal/models"
	"xhs-monitor/internal/monitor"
)

// NoteHandler serves ad hoc reads against the platform.
type NoteHandler struct {
	svc monitor.MonitorService
}

func NewNoteHandler(svc monitor.MonitorService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

// SearchNotes godoc
// @Summary Search posts by keyword
// @Description Returns up to limit posts whose URLs can be subscribed to as monitor targets
// @Tags notes
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Keyword and limit"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Failure 503 {object} models.HTTPError
// @Router /api/search [post]
func (h *NoteHandler) SearchNotes(c echo.Context) error {
	var req models.SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hits, err := h.svc.SearchNotes(c.Request().Context(), req.Keyword, req.Limit)
	if err != nil {
		return platformError(err)
	}
	return c.JSON(http.StatusOK, models.SearchResponse{Keyword: req.Keyword, Count: len(hits), Notes: hits})
}

// NoteInfo godoc
// @Summary Read a post's metadata
// @Tags notes
// @Accept json
// @Produce json
// @Param request body models.NoteRequest true "Post URL"
// @Success 200 {object} models.PostSnapshot
// @Failure 400 {object} models.HTTPError
// @Failure 404 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Failure 503 {object} models.HTTPError
// @Router /api/notes/info [post]
func (h *NoteHandler) NoteInfo(c echo.Context) error {
	var req models.NoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	snap, err := h.svc.NoteInfo(c.Request().Context(), req.URL)
	if err != nil {
		return platformError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// NoteComments godoc
// @Summary Read a post's comments
// @Description Walks every comment and reply of the post without storing them
// @Tags notes
// @Accept json
// @Produce json
// @Param request body models.NoteRequest true "Post URL"
// @Success 200 {object} models.NoteCommentsResponse
// @Failure 400 {object} models.HTTPError
// @Failure 404 {object} models.HTTPError
// @Failure 502 {object} models.HTTPError
// @Failure 503 {object} models.HTTPError
// @Router /api/notes/comments [post]
func (h *NoteHandler) NoteComments(c echo.Context) error {
	var req models.NoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comments, err := h.svc.NoteComments(c.Request().Context(), req.URL)
	if err != nil {
		return platformError(err)
	}

	resp := models.NoteCommentsResponse{Count: len(comments), Comments: comments}
	if loc, err := locator.Normalize(req.URL); err == nil {
		resp.NoteID = loc.NoteID
	}
	return c.JSON(http.StatusOK, resp)
}

// platformError maps a failure kind to the status a caller can act on.
func platformError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidURL:
		code = http.StatusBadRequest
	case apperrors.KindPostUnavailable:
		code = http.StatusNotFound
	case apperrors.KindNoSession:
		code = http.StatusServiceUnavailable
	case apperrors.KindAuthRejected, apperrors.KindPlatformUnavailable, apperrors.KindSearchFailed, apperrors.KindCommentFetch:
		code = http.StatusBadGateway
	}
	return echo.NewHTTPError(code, err.Error())
}
