// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/room-matcher/backend/internal/intake"
	"github.com/room-matcher/backend/internal/pipeline"
	"github.com/room-matcher/backend/internal/storage"
	"github.com/room-matcher/backend/internal/upload"
)

// APIError represents a structured API error response. Notice is the short
// human-readable text the UI shows; Details carries the proximate message
// returned by a failing service, nothing more.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Notice  string `json:"notice"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Notice)
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(notice string, cause error) *APIError {
	err := &APIError{
		Status: http.StatusBadRequest,
		Code:   "BAD_REQUEST",
		Notice: notice,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field.
func NewValidationError(field string) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   "VALIDATION_ERROR",
		Notice: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status: http.StatusNotFound,
		Code:   "NOT_FOUND",
		Notice: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error.
func NewConflictError(notice string) *APIError {
	return &APIError{
		Status: http.StatusConflict,
		Code:   "CONFLICT",
		Notice: notice,
	}
}

// NewInternalError creates a 500 Internal Server Error.
func NewInternalError(notice string, cause error) *APIError {
	err := &APIError{
		Status: http.StatusInternalServerError,
		Code:   "INTERNAL_ERROR",
		Notice: notice,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// MapUploadError translates an upload-flow error into its API shape.
// Validation and configuration failures are terminal for the current
// action; upload and pipeline failures abort only this attempt and the user
// may retry by selecting a file again.
func MapUploadError(err error) *APIError {
	var uploadErr *storage.UploadError
	var pipelineErr *pipeline.Error

	switch {
	case errors.Is(err, intake.ErrInvalidFormat):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "VALIDATION_ERROR",
			Notice:  "Invalid file format",
			Details: err.Error(),
		}
	case errors.Is(err, storage.ErrNotConfigured), errors.Is(err, pipeline.ErrNotConfigured):
		return &APIError{
			Status:  http.StatusServiceUnavailable,
			Code:    "CONFIGURATION_ERROR",
			Notice:  "Service is not configured",
			Details: err.Error(),
		}
	case errors.As(err, &uploadErr):
		return &APIError{
			Status:  http.StatusBadGateway,
			Code:    "UPLOAD_ERROR",
			Notice:  "File upload failed",
			Details: uploadErr.Message,
		}
	case errors.Is(err, upload.ErrForcedParseFailure):
		return &APIError{
			Status:  http.StatusBadGateway,
			Code:    "PIPELINE_ERROR",
			Notice:  "File processing failed",
			Details: upload.ErrForcedParseFailure.Error(),
		}
	case errors.As(err, &pipelineErr):
		return &APIError{
			Status:  http.StatusBadGateway,
			Code:    "PIPELINE_ERROR",
			Notice:  "File processing failed",
			Details: pipelineErr.Message,
		}
	default:
		return NewInternalError("File processing failed", err)
	}
}

// ErrorHandler is the central echo error handler.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status: e.Code,
			Code:   "HTTP_ERROR",
			Notice: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status: http.StatusInternalServerError,
			Code:   "UNKNOWN_ERROR",
			Notice: "An unexpected error occurred",
		}
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
