// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/room-matcher/backend/internal/matcher"
	"github.com/room-matcher/backend/internal/record"
	"github.com/room-matcher/backend/internal/session"
	"github.com/room-matcher/backend/internal/upload"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Coordinator *upload.Coordinator
	SessionMgr  *session.Manager
	Recorder    record.Recorder
	Fallbacks   *matcher.Fallbacks
	AutoRun     bool
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Upload UploadHandler
	Match  MatchHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Upload: NewUploadHandler(deps.Coordinator, deps.SessionMgr, deps.Recorder, deps.AutoRun),
		Match:  NewMatchHandler(deps.SessionMgr, deps.Fallbacks),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Upload flow
	apiGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	apiGroup.GET("/files/recent", handlers.Upload.HandleRecentFiles)
	apiGroup.GET("/files/:id", handlers.Upload.HandleGetFile)
	apiGroup.GET("/uploads/records", handlers.Upload.HandleUploadRecords)

	// Samples (QA)
	apiGroup.GET("/samples", handlers.Match.HandleGetSamples)

	// Match sessions and runs
	sessionGroup := apiGroup.Group("/session/:sessionId")
	sessionGroup.GET("", handlers.Match.HandleGetSession)
	sessionGroup.PUT("/profile", handlers.Match.HandleUpdateProfile)
	sessionGroup.POST("/run", handlers.Match.HandleStartRun)
	sessionGroup.GET("/run", handlers.Match.HandleRunStatus)
	sessionGroup.GET("/run/results", handlers.Match.HandleRunResults)
	sessionGroup.GET("/run/results/msgpack", handlers.Match.HandleRunResultsMsgpack)
	sessionGroup.GET("/run/progress", handlers.Match.HandleRunProgressStream)
	sessionGroup.POST("/keepalive", handlers.Match.HandleSessionKeepAlive)
}
