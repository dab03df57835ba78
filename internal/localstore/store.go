package localstore

import (
	"sync"
)

// Store is the durable string-keyed storage capability the progress store
// and sync engine are built on. It mirrors browser localStorage semantics:
// synchronous get/set, values are caller-serialized JSON, no eviction.
type Store interface {
	// Get returns the stored value and whether the key exists
	Get(key string) (string, bool, error)
	// Set writes or overwrites the value for a key
	Set(key, value string) error
}

// MemStore is an in-memory Store used in tests
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the stored value and whether the key exists
func (s *MemStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set writes or overwrites the value for a key
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
