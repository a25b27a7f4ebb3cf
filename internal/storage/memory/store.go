package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/skygate/internal/storage"
)

// Store keeps values in process memory. Useful for local development and tests.
type Store struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{items: make(map[string]map[string]string)}
}

func (s *Store) Get(_ context.Context, namespace, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[namespace][key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(_ context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.items[namespace]
	if !ok {
		ns = make(map[string]string)
		s.items[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Delete removes the key; deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.items[namespace]
	if !ok {
		return nil
	}
	delete(ns, key)
	if len(ns) == 0 {
		delete(s.items, namespace)
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}
