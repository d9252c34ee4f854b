package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lockpass/internal/session/models"
	"lockpass/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in a map with copy-in/copy-out semantics so
// callers never share a record with the store. Backs development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[uuid.UUID]models.Session)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[id]; ok {
		copied := session
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[session.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != session.Version {
		return sentinel.ErrConflict
	}
	session.Version++
	s.sessions[session.ID] = *session
	return nil
}
