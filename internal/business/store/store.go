// Package store persists merchant configuration records. Implementations
// return pkg/platform/sentinel errors; the service translates them.
package store

import (
	"context"

	"github.com/google/uuid"

	"lockpass/internal/business/models"
)

// Store is the persistence contract for business records.
type Store interface {
	Create(ctx context.Context, business *models.Business) error
	Update(ctx context.Context, business *models.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Count(ctx context.Context) (int, error)
}
