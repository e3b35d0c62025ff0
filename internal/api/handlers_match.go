// handlers_match.go - Match session and run operation handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/room-matcher/backend/internal/matcher"
	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/session"
)

// MatchHandlerImpl implements the MatchHandler interface
type MatchHandlerImpl struct {
	sessionMgr *session.Manager
	fallbacks  *matcher.Fallbacks
}

// NewMatchHandler creates a new match handler instance
func NewMatchHandler(sessionMgr *session.Manager, fallbacks *matcher.Fallbacks) MatchHandler {
	return &MatchHandlerImpl{
		sessionMgr: sessionMgr,
		fallbacks:  fallbacks,
	}
}

// HandleGetSamples returns the QA sample profiles.
func (h *MatchHandlerImpl) HandleGetSamples(c echo.Context) error {
	keys := h.fallbacks.SampleKeys()
	samples := make([]models.ParsedProfile, 0, len(keys))
	for _, key := range keys {
		samples = append(samples, h.fallbacks.SampleProfile(key))
	}

	return c.JSON(http.StatusOK, samples)
}

// HandleGetSession returns a match session.
func (h *MatchHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	h.sessionMgr.Touch(id)

	return c.JSON(http.StatusOK, sess)
}

// HandleUpdateProfile replaces the session's profile wholesale (user edit).
// The next confirmed run uses the edited profile.
func (h *MatchHandlerImpl) HandleUpdateProfile(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	profile := &models.ParsedProfile{}
	if err := c.Bind(profile); err != nil {
		return NewBadRequestError("invalid profile body", err)
	}

	if !h.sessionMgr.UpdateProfile(id, profile) {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, profile)
}

// HandleStartRun starts the orchestrated run for a session (user confirm,
// or a re-run after an edit). A request while a run is in flight is dropped
// and answered with the in-flight run.
func (h *MatchHandlerImpl) HandleStartRun(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	run, started, err := h.sessionMgr.StartRun(id)
	if err != nil {
		return NewNotFoundError("session", id)
	}

	status := http.StatusAccepted
	if !started {
		status = http.StatusConflict
	}

	return c.JSON(status, map[string]interface{}{
		"started": started,
		"run":     run,
	})
}

// HandleRunStatus returns the current run snapshot.
func (h *MatchHandlerImpl) HandleRunStatus(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	run, ok := h.sessionMgr.GetRun(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	if run == nil {
		return NewNotFoundError("run", id)
	}

	h.sessionMgr.Touch(id)

	return c.JSON(http.StatusOK, run)
}

// HandleRunResults returns the completed run's results.
func (h *MatchHandlerImpl) HandleRunResults(c echo.Context) error {
	run, err := h.completedRun(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, run.Results)
}

// HandleRunResultsMsgpack returns the completed run's results
// MessagePack-encoded for compact transfer.
func (h *MatchHandlerImpl) HandleRunResultsMsgpack(c echo.Context) error {
	run, err := h.completedRun(c)
	if err != nil {
		return err
	}

	data, merr := msgpack.Marshal(run.Results)
	if merr != nil {
		return NewInternalError("failed to encode results", merr)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleRunProgressStream streams run progress via SSE until the run
// completes.
func (h *MatchHandlerImpl) HandleRunProgressStream(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	run, ok := h.sessionMgr.GetRun(id)
	if !ok {
		h.sendSSEError(c, "session not found")
		return nil
	}
	h.sendSSEData(c, run)
	if run != nil && run.Status == models.RunStatusComplete {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			run, ok := h.sessionMgr.GetRun(id)
			if !ok {
				h.sendSSEError(c, "session not found")
				return nil
			}

			h.sendSSEData(c, run)

			if run != nil && run.Status == models.RunStatusComplete {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

// HandleSessionKeepAlive extends session lifetime for active viewing.
func (h *MatchHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if ok := h.sessionMgr.Touch(id); !ok {
		return NewNotFoundError("session", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// Helper methods

func (h *MatchHandlerImpl) completedRun(c echo.Context) (*models.MatchRun, error) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}

	run, ok := h.sessionMgr.GetRun(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	if run == nil || run.Results == nil {
		return nil, NewNotFoundError("results", id)
	}

	return run, nil
}

func (h *MatchHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *MatchHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
