// handlers_upload.go - File upload operation handlers
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/record"
	"github.com/room-matcher/backend/internal/session"
	"github.com/room-matcher/backend/internal/upload"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	coordinator *upload.Coordinator
	sessionMgr  *session.Manager
	recorder    record.Recorder
	autoRun     bool
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(coordinator *upload.Coordinator, sessionMgr *session.Manager, recorder record.Recorder, autoRun bool) UploadHandler {
	return &UploadHandlerImpl{
		coordinator: coordinator,
		sessionMgr:  sessionMgr,
		recorder:    recorder,
		autoRun:     autoRun,
	}
}

// uploadResponse is the reply to a successful upload-and-parse action.
type uploadResponse struct {
	File      *models.FileInfo      `json:"file"`
	Profile   *models.ParsedProfile `json:"profile"`
	SessionID string                `json:"sessionId"`
	AutoRun   bool                  `json:"autoRun"`
	Run       *models.MatchRun      `json:"run,omitempty"`
}

// HandleUploadFile accepts a filled preferences document (multipart), runs
// the upload-and-parse flow and opens a match session around the parsed
// profile. With auto-run enabled the orchestrated run starts before the
// response is written, so the client's first status poll already sees it.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")

	info, profile, err := h.coordinator.Process(c.Request().Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		return MapUploadError(err)
	}

	sampleKey := c.FormValue("sample")
	sess, err := h.sessionMgr.Create(profile, sampleKey)
	if err != nil {
		return NewInternalError("failed to open match session", err)
	}

	resp := &uploadResponse{
		File:      info,
		Profile:   profile,
		SessionID: sess.ID,
		AutoRun:   h.autoRun,
	}

	if h.autoRun {
		run, started, err := h.sessionMgr.StartRun(sess.ID)
		if err == nil && started {
			resp.Run = run
		} else if err != nil {
			fmt.Printf("[Upload %s] Auto-run failed to start: %v\n", sess.ID[:8], err)
		}
	}

	return c.JSON(http.StatusCreated, resp)
}

// HandleRecentFiles returns the upload history, newest first.
func (h *UploadHandlerImpl) HandleRecentFiles(c echo.Context) error {
	files, err := h.coordinator.History(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}

	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.coordinator.Lookup(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleUploadRecords returns the metadata records written to the record
// store, newest first.
func (h *UploadHandlerImpl) HandleUploadRecords(c echo.Context) error {
	records, err := h.recorder.List(50)
	if err != nil {
		return NewInternalError("failed to list upload records", err)
	}
	if records == nil {
		records = []*record.Record{}
	}

	return c.JSON(http.StatusOK, records)
}
