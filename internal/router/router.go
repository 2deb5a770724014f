// internal/router/router.go
package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"xhs-monitor/internal/handler/http"
	"xhs-monitor/internal/monitor"
)

// NewRouter registers the API routes. monitorTimeout bounds a whole POST /api/monitor request
// across all of the user's targets.
func NewRouter(e *echo.Echo, svc monitor.MonitorService, monitorTimeout time.Duration) {
	mon := http.NewMonitorHandler(svc, monitorTimeout)
	ses := http.NewSessionHandler(svc)
	tgt := http.NewTargetHandler(svc)
	hlt := http.NewHealthHandler(svc)
	nts := http.NewNoteHandler(svc)

	api := e.Group("/api")
	api.POST("/monitor", mon.RunMonitor)
	api.GET("/health", hlt.Health)
	api.POST("/sessions", ses.AddSession)
	api.GET("/sessions", ses.ListSessions)
	api.GET("/sessions/count", ses.CountSessions)
	api.POST("/targets", tgt.AddTarget)
	api.GET("/targets", tgt.ListTargets)
	api.POST("/search", nts.SearchNotes)
	api.POST("/notes/info", nts.NoteInfo)
	api.POST("/notes/comments", nts.NoteComments)
}
