// mock_record.go - Mock metadata recorder for testing
package testutil

import (
	"sync"

	"github.com/room-matcher/backend/internal/record"
)

// MockRecorder implements record.Recorder in memory for testing.
type MockRecorder struct {
	mu      sync.RWMutex
	keys    []string
	records map[string]*record.Record

	// WriteErr, when set, is returned by every Write call.
	WriteErr error
}

// NewMockRecorder creates a new mock recorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		records: make(map[string]*record.Record),
	}
}

func (m *MockRecorder) Write(key string, rec *record.Record) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.records[key] = rec
	return nil
}

func (m *MockRecorder) List(limit int) ([]*record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*record.Record, 0, len(m.keys))
	for i := len(m.keys) - 1; i >= 0; i-- {
		records = append(records, m.records[m.keys[i]])
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (m *MockRecorder) Close() error {
	return nil
}

// Ensure MockRecorder implements record.Recorder
var _ record.Recorder = (*MockRecorder)(nil)

// Count returns the number of written records.
func (m *MockRecorder) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
