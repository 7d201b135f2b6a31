package credentials

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in process memory. Nothing survives a
// restart; used for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Kind]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Kind]string, len(Kinds))}
}

func (s *MemoryStore) Get(_ context.Context, kind Kind) (string, error) {
	if err := kind.validate(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[kind], nil
}

func (s *MemoryStore) Set(_ context.Context, kind Kind, value string) error {
	if err := kind.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, kind)
		return nil
	}
	s.values[kind] = value
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, kind Kind) error {
	if err := kind.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, kind)
	return nil
}

func (s *MemoryStore) ClearAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.values)
	return nil
}
