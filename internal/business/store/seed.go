package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"lockpass/internal/business/models"
)

// DemoBusinessID is the fixed id of the development seed record so local
// clients can create sessions without an admin round trip first.
var DemoBusinessID = uuid.MustParse("6f1c0c9e-0d5b-4a7e-9f3a-2b8c4d1e5a60")

// Seed inserts a demo business when the store is empty. Intended for
// development with the in-memory store; a non-empty store is left untouched.
func Seed(ctx context.Context, s Store, logger *slog.Logger) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	demo, err := models.NewBusiness(DemoBusinessID, "Demo Coffee", 15, 5000, 300, "gold")
	if err != nil {
		return err
	}
	if err := s.Create(ctx, demo); err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeded demo business", "business_id", demo.ID)
	return nil
}
