// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// UploadHandler handles file upload operations
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleUploadRecords(c echo.Context) error
}

// MatchHandler handles match session and run operations
type MatchHandler interface {
	HandleGetSamples(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleUpdateProfile(c echo.Context) error
	HandleStartRun(c echo.Context) error
	HandleRunStatus(c echo.Context) error
	HandleRunResults(c echo.Context) error
	HandleRunResultsMsgpack(c echo.Context) error
	HandleRunProgressStream(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
