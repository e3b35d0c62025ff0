// Package record persists upload metadata records keyed by a generated
// unique identifier.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is one upload metadata record. UploadedAt is ISO-8601.
type Record struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	SizeStr    string `json:"sizeStr"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploadedAt"`
}

// Recorder defines the interface for the metadata record store.
type Recorder interface {
	Write(key string, rec *Record) error
	List(limit int) ([]*Record, error)
	Close() error
}

// NewKey generates a fresh record key. When the UUID generator fails, it
// falls back to the current Unix-millis timestamp. The timestamp fallback
// does not guarantee uniqueness across rapid repeated uploads; that is a
// known limitation.
func NewKey() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	return id.String()
}
