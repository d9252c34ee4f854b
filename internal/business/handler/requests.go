package handler

import (
	"strings"

	"lockpass/internal/business/models"
	dErrors "lockpass/pkg/domain-errors"
)

// CreateBusinessRequest is the HTTP request body for POST /admin/businesses.
type CreateBusinessRequest struct {
	Name               string `json:"name"`
	DiscountPercent    int    `json:"discountPercent"`
	RequiredLockAmount int64  `json:"requiredLockAmount"`
	TTLSeconds         int    `json:"ttlSeconds"`
	TierLabel          string `json:"tierLabel"`
}

// Validate implements httputil.Validatable.
func (r *CreateBusinessRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.DiscountPercent < 0 || r.DiscountPercent > 100 {
		return dErrors.New(dErrors.CodeValidation, "discountPercent must be between 0 and 100")
	}
	if r.RequiredLockAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "requiredLockAmount must be positive")
	}
	if r.TTLSeconds < models.MinTTLSeconds || r.TTLSeconds > models.MaxTTLSeconds {
		return dErrors.Newf(dErrors.CodeValidation, "ttlSeconds must be between %d and %d", models.MinTTLSeconds, models.MaxTTLSeconds)
	}
	return nil
}
