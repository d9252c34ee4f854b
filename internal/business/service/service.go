package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"lockpass/internal/business/models"
	dErrors "lockpass/pkg/domain-errors"
	"lockpass/pkg/platform/sentinel"
)

// Store is the persistence port consumed by the service.
type Store interface {
	Create(ctx context.Context, business *models.Business) error
	Update(ctx context.Context, business *models.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Count(ctx context.Context) (int, error)
}

// Service manages merchant configuration records and serves as the business
// registry for the session lifecycle. Records are read-only from the session
// core's perspective; mutation happens only through the admin surface.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries validated admin input for a new business.
type CreateParams struct {
	Name               string
	DiscountPercent    int
	RequiredLockAmount int64
	TTLSeconds         int
	TierLabel          string
}

// Create registers a new merchant configuration.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Business, error) {
	b, err := models.NewBusiness(uuid.New(), params.Name, params.DiscountPercent,
		params.RequiredLockAmount, params.TTLSeconds, params.TierLabel)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "business already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create business")
	}

	s.logger.InfoContext(ctx, "business created",
		"business_id", b.ID,
		"discount_percent", b.DiscountPercent,
		"required_lock_amount", b.RequiredLockAmount,
	)
	return b, nil
}

// Get fetches a business for the admin surface, inactive records included.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load business")
	}
	return b, nil
}

// Deactivate makes a business unresolvable for new sessions. Existing
// sessions keep the configuration they were created with.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !b.Active {
		return nil
	}
	b.Active = false
	if err := s.store.Update(ctx, b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate business")
	}
	s.logger.InfoContext(ctx, "business deactivated", "business_id", id)
	return nil
}

// Resolve looks up a business for session creation. Missing and inactive
// records are indistinguishable to callers: both are NotFound.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load business")
	}
	if !b.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
	}
	return b, nil
}
