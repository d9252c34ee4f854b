package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lockpass/internal/business/models"
	"lockpass/pkg/platform/sentinel"
)

// InMemoryStore keeps business records in a map. It favors clarity over
// performance and backs development and unit tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	businesses map[uuid.UUID]models.Business
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{businesses: make(map[uuid.UUID]models.Business)}
}

func (s *InMemoryStore) Create(_ context.Context, business *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[business.ID]; ok {
		return sentinel.ErrConflict
	}
	s.businesses[business.ID] = *business
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, business *models.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[business.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.businesses[business.ID] = *business
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if business, ok := s.businesses[id]; ok {
		b := business
		return &b, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.businesses), nil
}
