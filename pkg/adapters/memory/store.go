// Package memory provides the in-memory RecordStore used by default.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/vigil/pkg/ports"
)

// Store implements ports.RecordStore in memory.
// Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	data  map[string]string
	order []string
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Record stores (key, data) unless the key was seen before.
func (s *Store) Record(ctx context.Context, key, data string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = data
	s.order = append(s.order, key)
	return true, nil
}

// Entries returns all recorded pairs in first-seen order.
func (s *Store) Entries(ctx context.Context) ([]ports.RecordedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]ports.RecordedEntry, 0, len(s.order))
	for _, key := range s.order {
		entries = append(entries, ports.RecordedEntry{Key: key, Data: s.data[key]})
	}
	return entries, nil
}
