package store

import (
	"context"
	"sync"
)

// MemoryKeyValueStore is an in-memory [KeyValueStore]. It backs the engine's
// unit tests and any caller that does not need durability.
type MemoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{
		values: make(map[string][]byte),
	}
}

func (s *MemoryKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = stored
	return nil
}

func (s *MemoryKeyValueStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryKeyValueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}
