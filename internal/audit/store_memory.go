package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps audit entries per session. Backs development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[uuid.UUID][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry)
	return nil
}

func (s *InMemoryStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries[sessionID]...), nil
}
