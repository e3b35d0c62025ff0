package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/room-matcher/backend/internal/intake"
	"github.com/room-matcher/backend/internal/models"
)

// BucketStore implements Store against a remote object-storage bucket over
// HTTP. Objects are uploaded with a bearer key and addressed under
// uploads/<date>/<timestamp>-<name>; the returned URL is the public object
// URL.
type BucketStore struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client

	mu    sync.RWMutex
	files map[string]*models.FileInfo
	now   func() time.Time
}

// NewBucketStore creates a bucket-backed store. baseURL and apiKey come from
// the environment; either being empty means the store is unconfigured and
// every Save fails with ErrNotConfigured before any network call.
func NewBucketStore(baseURL, bucket, apiKey string, client *http.Client) *BucketStore {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if bucket == "" {
		bucket = "uploads"
	}
	return &BucketStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
		apiKey:  apiKey,
		client:  client,
		files:   make(map[string]*models.FileInfo),
		now:     time.Now,
	}
}

// Save uploads the file content to the bucket and records its metadata.
func (s *BucketStore) Save(ctx context.Context, name string, contentType string, r io.Reader) (*models.FileInfo, error) {
	if s.baseURL == "" || s.apiKey == "" {
		return nil, ErrNotConfigured
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file content: %w", err)
	}

	now := s.now()
	objectPath := fmt.Sprintf("uploads/%s/%d-%s", now.Format("2006-01-02"), now.UnixMilli(), sanitizeName(name))
	target := fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectPath)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UploadError{Status: resp.StatusCode, Message: readProviderMessage(resp.Body)}
	}

	size := int64(len(data))
	info := &models.FileInfo{
		ID:         uuid.New().String(),
		Name:       name,
		Size:       size,
		SizeStr:    intake.FormatSize(size),
		URL:        target,
		UploadedAt: now,
		Status:     "uploaded",
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[info.ID] = info

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *BucketStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	return info, nil
}

// List returns the most recent files, newest first.
func (s *BucketStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range s.files {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete forgets the local metadata. The remote object is left in place;
// the bucket has its own retention policy.
func (s *BucketStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	delete(s.files, id)
	return nil
}

// readProviderMessage extracts the provider's error message from a failed
// upload response. Providers answer with either {"message": ...} or
// {"error": ...}; anything else is returned as raw text.
func readProviderMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return ""
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	return strings.TrimSpace(string(body))
}
