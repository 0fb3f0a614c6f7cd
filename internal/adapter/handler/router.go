package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	pipelineHandler *PipelineHandler
	auth            *middleware.AuthMiddleware
	startedAt       time.Time
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, pipelineHandler *PipelineHandler, auth *middleware.AuthMiddleware) *Router {
	return &Router{
		cfg:             cfg,
		pipelineHandler: pipelineHandler,
		auth:            auth,
		startedAt:       time.Now(),
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: rt.cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.AuthTokenHeader},
	}))

	// Health check endpoint, unauthenticated
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/api/v1")
	if rt.auth != nil {
		v1.Use(rt.auth.Authenticate())
	}

	rt.setupMeetingRoutes(v1)
}

// setupMeetingRoutes configures meeting processing routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	if rt.pipelineHandler != nil {
		meetingGroup.POST("/process", rt.pipelineHandler.ProcessMeeting)
		meetingGroup.GET("/:meetingId/runs", rt.pipelineHandler.ListRuns)
	} else {
		meetingGroup.POST("/process", rt.notImplemented)
		meetingGroup.GET("/:meetingId/runs", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
		"uptime":      time.Since(rt.startedAt).Round(time.Second).String(),
	})
}
