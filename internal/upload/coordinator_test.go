package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/room-matcher/backend/internal/intake"
	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/pipeline"
	"github.com/room-matcher/backend/internal/testutil"
)

func TestProcess_FullFlow(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{})

	info, profile, err := c.Process(context.Background(), "profile.docx", "", []byte("file content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Status != "parsed" {
		t.Errorf("expected status parsed, got %s", info.Status)
	}
	if profile == nil || profile.ID == "" {
		t.Error("expected a parsed profile")
	}
	if store.FileCount() != 1 {
		t.Errorf("expected 1 stored file, got %d", store.FileCount())
	}
	if recorder.Count() != 1 {
		t.Errorf("expected 1 metadata record, got %d", recorder.Count())
	}
	if parser.Calls() != 1 {
		t.Errorf("expected exactly 1 parse submission, got %d", parser.Calls())
	}
	if c.Selection() != nil {
		t.Error("expected selection cleared after success")
	}
}

func TestProcess_InvalidFormat_NoIO(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{})

	_, _, err := c.Process(context.Background(), "notes.txt", "text/plain", []byte("x"))
	if !errors.Is(err, intake.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}

	// Rejection happens before any upload or parse step.
	if store.FileCount() != 0 {
		t.Error("rejected file must not reach storage")
	}
	if recorder.Count() != 0 {
		t.Error("rejected file must not be recorded")
	}
	if parser.Calls() != 0 {
		t.Error("rejected file must not be submitted for parsing")
	}
}

func TestProcess_StoreFailure_NoParse(t *testing.T) {
	store := testutil.NewMockStore()
	store.SaveErr = errors.New("bucket unreachable")
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{})

	_, _, err := c.Process(context.Background(), "profile.pdf", "", []byte("x"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if parser.Calls() != 0 {
		t.Error("parse must not run when the content upload failed")
	}
	if c.Selection() != nil {
		t.Error("expected selection cleared after failure")
	}
}

func TestProcess_RecordFailure_NotFatal(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	recorder.WriteErr = errors.New("record db locked")
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{})

	info, profile, err := c.Process(context.Background(), "profile.pdf", "", []byte("x"))
	if err != nil {
		t.Fatalf("metadata failure must not abort the flow: %v", err)
	}
	if info.Status != "parsed" || profile == nil {
		t.Error("expected the parse to proceed despite the record failure")
	}
	if store.FileCount() != 1 {
		t.Error("content upload must stay in place")
	}
}

func TestProcess_ForcedParseError(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{ForceParseError: true})

	info, _, err := c.Process(context.Background(), "profile.pdf", "", []byte("x"))
	if !errors.Is(err, ErrForcedParseFailure) {
		t.Fatalf("expected ErrForcedParseFailure, got %v", err)
	}
	if parser.Calls() != 0 {
		t.Error("forced failure must not reach the real parser")
	}
	if info == nil || info.Status != "error" {
		t.Error("expected file status error")
	}
	// The upload steps ran first, but the failed attempt leaves no trace in
	// the history.
	if recorder.Count() != 1 {
		t.Error("forced parse failure happens after the metadata record")
	}
	files, _ := c.History(20)
	if len(files) != 0 {
		t.Errorf("failed parse must not appear in history, got %d entries", len(files))
	}
}

func TestProcess_ParseFailure(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	parser.RunPipelineFn = func(ctx context.Context, sub pipeline.Submission) (*models.ParsedProfile, error) {
		return nil, &pipeline.Error{Message: "backend did not return a parsed profile"}
	}
	c := NewCoordinator(store, recorder, parser, Options{})

	info, _, err := c.Process(context.Background(), "profile.pdf", "", []byte("x"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		t.Errorf("expected wrapped *pipeline.Error, got %T", err)
	}
	if info.Status != "error" {
		t.Errorf("expected status error, got %s", info.Status)
	}
	if c.Selection() != nil {
		t.Error("expected selection cleared after parse failure")
	}

	// History holds successfully parsed uploads only.
	files, err := c.History(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("failed parse must not appear in history, got %d entries", len(files))
	}
	if store.FileCount() != 0 {
		t.Error("expected the failed upload dropped from the store")
	}
}

func TestProcess_SubmissionCarriesPathRef(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()

	var got pipeline.Submission
	parser.RunPipelineFn = func(ctx context.Context, sub pipeline.Submission) (*models.ParsedProfile, error) {
		got = sub
		return &models.ParsedProfile{ID: "U-001"}, nil
	}
	c := NewCoordinator(store, recorder, parser, Options{})

	info, _, err := c.Process(context.Background(), "profile.docx", "application/pdf", []byte("file content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.PathRef != info.URL {
		t.Errorf("expected the stored URL as path reference, got %s", got.PathRef)
	}
	if string(got.Data) != "file content" {
		t.Error("expected raw content in the submission")
	}
	if got.Name != "profile.docx" {
		t.Errorf("expected original name in the submission, got %s", got.Name)
	}
}

func TestHistoryAndLookup(t *testing.T) {
	store := testutil.NewMockStore()
	recorder := testutil.NewMockRecorder()
	parser := testutil.NewMockParser()
	c := NewCoordinator(store, recorder, parser, Options{})

	info, _, err := c.Process(context.Background(), "profile.pdf", "", []byte("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	files, err := c.History(20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file in history, got %d", len(files))
	}

	got, err := c.Lookup(info.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("expected file %s, got %s", info.ID, got.ID)
	}

	if _, err := c.Lookup("missing"); err == nil {
		t.Error("expected error for unknown file ID")
	}
}
