package out

import (
	"context"
	"sync"

	goalout "learnjourney/internal/modules/goal/port/out"
)

// MemoryStateStore keeps entries in process memory. Used for dry runs and tests.
type MemoryStateStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStateStore() goalout.DurableStore {
	return &MemoryStateStore{data: map[string][]byte{}}
}

func (s *MemoryStateStore) Load(_ context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (s *MemoryStateStore) Save(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.data[k] = append([]byte(nil), v...)
	}
	return nil
}
