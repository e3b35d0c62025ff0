package record

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Recorder. It backs tests and serves as the
// degraded mode when the record database cannot be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	keys    []string // insertion order
	records map[string]*Record
}

var _ Recorder = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Write inserts one record under key.
func (s *MemoryStore) Write(key string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; exists {
		return fmt.Errorf("duplicate record key: %s", key)
	}
	s.records[key] = rec
	s.keys = append(s.keys, key)
	return nil
}

// List returns the most recent records, newest first.
func (s *MemoryStore) List(limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	for i := len(s.keys) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, s.records[s.keys[i]])
	}
	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
