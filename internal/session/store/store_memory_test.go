package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lockpass/internal/session/models"
	"lockpass/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) newSession() *models.Session {
	sess, err := models.NewSession(uuid.New(), 5*time.Minute, time.Now())
	s.Require().NoError(err)
	return sess
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(models.StatusPending, found.Status)

	// Copy-out: mutating the returned record must not touch the store.
	found.Status = models.StatusRejected
	again, err := s.store.FindByID(ctx, sess.ID)
	s.NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

func (s *InMemoryStoreSuite) TestCreateDuplicate() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))
	s.ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSaveBumpsVersion() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	sess.AttestAttempts = 1
	s.Require().NoError(s.store.Save(ctx, sess))
	s.Equal(int64(1), sess.Version)

	found, err := s.store.FindByID(ctx, sess.ID)
	s.NoError(err)
	s.Equal(1, found.AttestAttempts)
	s.Equal(int64(1), found.Version)
}

func (s *InMemoryStoreSuite) TestSaveVersionConflict() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	first, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)

	first.AttestAttempts = 1
	s.Require().NoError(s.store.Save(ctx, first))

	second.AttestAttempts = 1
	s.ErrorIs(s.store.Save(ctx, second), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestSaveMissing() {
	sess := s.newSession()
	s.ErrorIs(s.store.Save(context.Background(), sess), sentinel.ErrNotFound)
}
