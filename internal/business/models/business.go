package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "lockpass/pkg/domain-errors"
)

// TTL bounds keep sessions short-lived enough for a point-of-sale flow but
// long enough for a wallet round trip.
const (
	MinTTLSeconds = 10
	MaxTTLSeconds = 3600
)

// Business is a merchant configuration record. It defines the eligibility
// rule a customer must satisfy: hold at least RequiredLockAmount tokens
// (human units) locked on-chain.
type Business struct {
	ID                 uuid.UUID
	Name               string
	DiscountPercent    int
	RequiredLockAmount int64
	TTLSeconds         int
	TierLabel          string
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewBusiness constructs a Business, enforcing invariants.
func NewBusiness(id uuid.UUID, name string, discountPercent int, requiredLockAmount int64, ttlSeconds int, tierLabel string) (*Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "business name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "business name must be at most 200 characters")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "discount percent must be between 0 and 100")
	}
	if requiredLockAmount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "required lock amount must be positive")
	}
	if ttlSeconds < MinTTLSeconds || ttlSeconds > MaxTTLSeconds {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "ttl seconds must be between %d and %d", MinTTLSeconds, MaxTTLSeconds)
	}

	now := time.Now().UTC()
	return &Business{
		ID:                 id,
		Name:               name,
		DiscountPercent:    discountPercent,
		RequiredLockAmount: requiredLockAmount,
		TTLSeconds:         ttlSeconds,
		TierLabel:          strings.TrimSpace(tierLabel),
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// TTL returns the session time-to-live as a duration.
func (b *Business) TTL() time.Duration {
	return time.Duration(b.TTLSeconds) * time.Second
}
