// mock_store.go - Mock content store for testing
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/room-matcher/backend/internal/intake"
	"github.com/room-matcher/backend/internal/models"
	"github.com/room-matcher/backend/internal/storage"
)

// MockStore implements storage.Store in memory for testing.
type MockStore struct {
	mu       sync.RWMutex
	files    map[string]*models.FileInfo
	order    []string
	fileData map[string][]byte

	// SaveErr, when set, is returned by every Save call.
	SaveErr error
}

// NewMockStore creates a new mock content store.
func NewMockStore() *MockStore {
	return &MockStore{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, name string, contentType string, r io.Reader) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateTestID()
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		SizeStr:    intake.FormatSize(int64(len(data))),
		URL:        "/mock/" + id + "/" + name,
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	m.files[id] = info
	m.order = append(m.order, id)
	m.fileData[id] = data
	return info, nil
}

func (m *MockStore) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return info, nil
}

func (m *MockStore) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.FileInfo, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		files = append(files, m.files[m.order[i]])
		if limit > 0 && len(files) >= limit {
			break
		}
	}
	return files, nil
}

func (m *MockStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return errors.New("file not found")
	}

	delete(m.files, id)
	delete(m.fileData, id)
	for i, key := range m.order {
		if key == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ensure MockStore implements storage.Store
var _ storage.Store = (*MockStore)(nil)

// Test Helper Methods

// FileData returns the stored content for a file.
func (m *MockStore) FileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

// FileCount returns the number of stored files.
func (m *MockStore) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
