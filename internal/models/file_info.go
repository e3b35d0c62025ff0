package models

import "time"

// FileInfo represents metadata about an uploaded preferences document.
// It is only created after the file passed intake validation, and is
// immutable once recorded.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	SizeStr    string    `json:"sizeStr"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"` // "uploaded", "parsing", "parsed", "error"
}
