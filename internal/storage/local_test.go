package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalStore_SaveAndGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := store.Save(context.Background(), "profile.docx", "application/pdf", strings.NewReader("file content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.ID == "" {
		t.Error("expected non-empty ID")
	}
	if info.Name != "profile.docx" {
		t.Errorf("expected name profile.docx, got %s", info.Name)
	}
	if info.Size != int64(len("file content")) {
		t.Errorf("expected size %d, got %d", len("file content"), info.Size)
	}
	if info.SizeStr != "12 B" {
		t.Errorf("expected size string 12 B, got %s", info.SizeStr)
	}
	if !filepath.IsAbs(info.URL) {
		t.Errorf("expected absolute path URL, got %s", info.URL)
	}
	if info.Status != "uploaded" {
		t.Errorf("expected status uploaded, got %s", info.Status)
	}

	got, err := store.Get(info.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("expected file %s, got %s", info.ID, got.ID)
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	if _, err := store.Get("missing"); err == nil {
		t.Error("expected error for unknown file ID")
	}
}

func TestLocalStore_ListNewestFirst(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())

	first, _ := store.Save(context.Background(), "a.pdf", "", strings.NewReader("a"))
	time.Sleep(2 * time.Millisecond)
	second, _ := store.Save(context.Background(), "b.pdf", "", strings.NewReader("b"))

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 files, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("expected newest first ordering")
	}

	limited, _ := store.List(1)
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Error("expected limit to keep the newest file")
	}
}

func TestLocalStore_Delete(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())

	info, _ := store.Save(context.Background(), "a.pdf", "", strings.NewReader("a"))
	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(info.ID); err == nil {
		t.Error("expected file gone after delete")
	}
	if err := store.Delete(info.ID); err == nil {
		t.Error("expected error deleting twice")
	}
}
