package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dejobratic/skygate/internal/checkout/ports"
)

type entry struct {
	response ports.StoredResponse
	savedAt  time.Time
}

// Store keeps replayable checkout responses in process memory. The first
// response saved under a key wins until it leaves the replay window.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{items: make(map[string]entry), now: time.Now}
}

func (s *Store) live(e entry) bool {
	return s.now().Sub(e.savedAt) < ports.ReplayWindow
}

// Get returns nil, nil when key has no live response. Expired entries are
// dropped on read.
func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !s.live(e) {
		delete(s.items, key)
		return nil, nil
	}
	value := e.response
	value.Body = append([]byte(nil), value.Body...)
	return &value, nil
}

func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, exists := s.items[key]; exists && s.live(e) {
		return nil
	}
	response.Body = append([]byte(nil), response.Body...)
	s.items[key] = entry{response: response, savedAt: s.now()}
	return nil
}
