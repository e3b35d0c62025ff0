// Package upload coordinates moving a validated file into durable storage,
// recording its metadata and obtaining a parsed profile from the remote
// pipeline.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/room-matcher/backend/internal/intake"
	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/pipeline"
	"github.com/room-matcher/backend/internal/record"
	"github.com/room-matcher/backend/internal/storage"
)

// ErrForcedParseFailure is the injected parse failure used by QA builds.
var ErrForcedParseFailure = errors.New("we couldn't extract data from this file - try a DOCX or a clear PDF scan")

// Parser is the slice of the pipeline client the coordinator needs.
type Parser interface {
	RunPipeline(ctx context.Context, sub pipeline.Submission) (*models.ParsedProfile, error)
}

// Options are constructor-injected coordinator settings.
type Options struct {
	// ForceParseError makes every parse report failure after the upload
	// steps complete. QA toggle; never enabled in production wiring.
	ForceParseError bool
}

// Coordinator drives the three upload steps in order: content upload,
// metadata record, remote parse submission. Each step can fail
// independently; a metadata failure is reported but does not roll back the
// content upload. The selected-file reference is cleared unconditionally on
// both success and failure so the user can retry from scratch.
type Coordinator struct {
	store    storage.Store
	recorder record.Recorder
	parser   Parser
	opts     Options

	mu       sync.Mutex
	selected *models.FileInfo
}

// NewCoordinator creates an upload coordinator.
func NewCoordinator(store storage.Store, recorder record.Recorder, parser Parser, opts Options) *Coordinator {
	return &Coordinator{
		store:    store,
		recorder: recorder,
		parser:   parser,
		opts:     opts,
	}
}

// Process runs one full upload action for an already-validated file and
// returns the recorded file metadata plus the parsed profile. At most one
// parse submission reaches the backend per call; there are no automatic
// retries.
func (c *Coordinator) Process(ctx context.Context, name, contentType string, data []byte) (*models.FileInfo, *models.ParsedProfile, error) {
	if err := intake.Validate(name, contentType); err != nil {
		return nil, nil, err
	}

	defer c.clearSelection()

	// Step 1: content upload.
	info, err := c.store.Save(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("content upload: %w", err)
	}
	c.setSelection(info)
	fmt.Printf("[Upload %s] Stored %s (%s) at %s\n", shortID(info.ID), info.Name, info.SizeStr, info.URL)

	// Step 2: metadata record. Reported but non-fatal; the content upload
	// stays in place.
	key := record.NewKey()
	rec := &record.Record{
		Name:       info.Name,
		Size:       info.Size,
		SizeStr:    info.SizeStr,
		URL:        info.URL,
		UploadedAt: info.UploadedAt.UTC().Format(time.RFC3339),
	}
	if err := c.recorder.Write(key, rec); err != nil {
		fmt.Printf("[Upload %s] Warning: metadata record failed: %v\n", shortID(info.ID), err)
	}

	// Step 3: remote parse submission. A file joins the history only once
	// its parse succeeded; failed attempts are dropped from the store.
	info.Status = "parsing"
	if c.opts.ForceParseError {
		info.Status = "error"
		c.dropFromHistory(info)
		return info, nil, ErrForcedParseFailure
	}

	profile, err := c.parser.RunPipeline(ctx, pipeline.Submission{
		Name:        info.Name,
		ContentType: contentType,
		Data:        data,
		PathRef:     info.URL,
	})
	if err != nil {
		info.Status = "error"
		c.dropFromHistory(info)
		return info, nil, fmt.Errorf("parse submission: %w", err)
	}

	info.Status = "parsed"
	fmt.Printf("[Upload %s] Parsed profile %s\n", shortID(info.ID), profile.ID)

	return info, profile, nil
}

// History returns previously uploaded and successfully parsed files, newest
// first.
func (c *Coordinator) History(limit int) ([]*models.FileInfo, error) {
	return c.store.List(limit)
}

// dropFromHistory removes a failed upload's store entry so it never shows up
// in the history. The failure the caller is already reporting matters more
// than a cleanup error here.
func (c *Coordinator) dropFromHistory(info *models.FileInfo) {
	if err := c.store.Delete(info.ID); err != nil {
		fmt.Printf("[Upload %s] Warning: failed to drop unparsed file: %v\n", shortID(info.ID), err)
	}
}

// Lookup returns one uploaded file's metadata by ID.
func (c *Coordinator) Lookup(id string) (*models.FileInfo, error) {
	return c.store.Get(id)
}

// Selection returns the in-flight file reference, nil outside a Process
// call. The reference is cleared on every exit path.
func (c *Coordinator) Selection() *models.FileInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Coordinator) setSelection(info *models.FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = info
}

func (c *Coordinator) clearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
