// Package store persists session records. Save uses an optimistic version
// check: writes race only with other writes to the same session, and the
// loser gets sentinel.ErrConflict so the service can retry its
// read-mutate-write cycle. Sessions are never physically deleted.
package store

import (
	"context"

	"github.com/google/uuid"

	"lockpass/internal/session/models"
)

// Store is the persistence contract for session records.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// Save commits a mutation when session.Version still matches the stored
	// record, then increments the version. Mismatch returns
	// sentinel.ErrConflict.
	Save(ctx context.Context, session *models.Session) error
}
