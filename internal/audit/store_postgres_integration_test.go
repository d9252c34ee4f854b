//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lockpass/internal/audit"
	"lockpass/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
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
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_entries"))
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	sessionID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, entryType := range []audit.EntryType{audit.EntrySessionCreated, audit.EntryAttestOK, audit.EntryRedeemed} {
		s.Require().NoError(s.store.Append(ctx, audit.Entry{
			SessionID: sessionID,
			Type:      entryType,
			Payload:   map[string]any{"step": float64(i)},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(audit.EntrySessionCreated, entries[0].Type)
	s.Equal(audit.EntryAttestOK, entries[1].Type)
	s.Equal(audit.EntryRedeemed, entries[2].Type)
	s.Equal(float64(1), entries[1].Payload["step"])
}

func (s *PostgresStoreSuite) TestListScopedToSession() {
	ctx := context.Background()
	mine, other := uuid.New(), uuid.New()
	s.Require().NoError(s.store.Append(ctx, audit.Entry{SessionID: mine, Type: audit.EntrySessionCreated, Timestamp: time.Now()}))
	s.Require().NoError(s.store.Append(ctx, audit.Entry{SessionID: other, Type: audit.EntrySessionCreated, Timestamp: time.Now()}))

	entries, err := s.store.ListBySession(ctx, mine)
	s.Require().NoError(err)
	s.Len(entries, 1)
	s.Equal(mine, entries[0].SessionID)
}

func (s *PostgresStoreSuite) TestListEmpty() {
	entries, err := s.store.ListBySession(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Empty(entries)
}
