package memory

import (
	"context"
	"sync"
)

// SnapshotStore keeps session snapshots in process memory.
type SnapshotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{slots: make(map[string][]byte)}
}

func (s *SnapshotStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = append([]byte(nil), data...)
	return nil
}

func (s *SnapshotStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *SnapshotStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}
