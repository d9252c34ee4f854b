//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lockpass/internal/business/models"
	"lockpass/internal/business/store"
	"lockpass/pkg/platform/sentinel"
	"lockpass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "audit_entries", "sessions", "businesses"))
}

func newBusiness(s *PostgresStoreSuite, name string) *models.Business {
	b, err := models.NewBusiness(uuid.New(), name, 15, 5000, 300, "gold")
	s.Require().NoError(err)
	return b
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	b := newBusiness(s, "Demo Coffee")
	s.Require().NoError(s.store.Create(ctx, b))

	found, err := s.store.FindByID(ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(b.Name, found.Name)
	s.Equal(b.RequiredLockAmount, found.RequiredLockAmount)
	s.True(found.Active)
}

func (s *PostgresStoreSuite) TestCreateDuplicateID() {
	ctx := context.Background()
	b := newBusiness(s, "Demo Coffee")
	s.Require().NoError(s.store.Create(ctx, b))
	s.ErrorIs(s.store.Create(ctx, b), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	b := newBusiness(s, "Demo Coffee")
	s.Require().NoError(s.store.Create(ctx, b))

	b.Active = false
	b.DiscountPercent = 20
	s.Require().NoError(s.store.Update(ctx, b))

	found, err := s.store.FindByID(ctx, b.ID)
	s.Require().NoError(err)
	s.False(found.Active)
	s.Equal(20, found.DiscountPercent)
}

func (s *PostgresStoreSuite) TestUpdateMissing() {
	s.ErrorIs(s.store.Update(context.Background(), newBusiness(s, "Ghost")), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCount() {
	ctx := context.Background()
	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Zero(count)

	s.Require().NoError(s.store.Create(ctx, newBusiness(s, "One")))
	s.Require().NoError(s.store.Create(ctx, newBusiness(s, "Two")))

	count, err = s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}
