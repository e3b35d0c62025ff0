// Package intake gatekeeps which files may enter the matching pipeline.
// It performs no I/O; rejection happens before any network call.
package intake

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFormat is returned for files whose type and extension are both
// off the allow-list.
var ErrInvalidFormat = errors.New("invalid file format")

// allowedTypes is the fixed content-type allow-list. Browsers and OSes
// report unreliable or empty content types, so the extension check below
// is an independent second chance.
var allowedTypes = map[string]struct{}{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// allowedExts is the fixed extension allow-list, matched case-insensitively.
var allowedExts = map[string]struct{}{
	".docx": {},
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// Validate accepts a file if either its declared content type or its name's
// extension is on the allow-list. contentType may be empty.
func Validate(name, contentType string) error {
	if _, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExts[ext]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidFormat, name)
}

// FormatSize renders a byte count as a human-readable string using base-1024
// units with two-decimal precision, e.g. "12.34 KB".
func FormatSize(sizeBytes int64) string {
	const unit = 1024
	if sizeBytes < unit {
		return fmt.Sprintf("%d B", sizeBytes)
	}
	div, exp := int64(unit), 0
	for n := sizeBytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(sizeBytes)/float64(div), "KMGTPE"[exp])
}
