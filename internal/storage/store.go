// Package storage moves validated files into durable content storage and
// tracks their metadata.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/room-matcher/backend/internal/models"
)

// ErrNotConfigured is returned when the content store's credentials or
// identifiers are absent from the environment.
var ErrNotConfigured = errors.New("content storage is not configured")

// UploadError carries the provider's proximate error message for a rejected
// content upload.
type UploadError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("content upload failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("content upload failed (%d)", e.Status)
}

// Store defines the interface for content storage. Save returns metadata
// including a durable URL usable by the remote parse pipeline.
type Store interface {
	Save(ctx context.Context, name string, contentType string, r io.Reader) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
}

// sanitizeName replaces whitespace in a file name so it is safe inside an
// object path.
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
