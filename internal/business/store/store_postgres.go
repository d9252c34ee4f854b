package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lockpass/internal/business/models"
	"lockpass/pkg/platform/sentinel"
)

// PostgresStore persists business records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, business *models.Business) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO businesses (id, name, discount_percent, required_lock_amount, ttl_seconds, tier_label, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		business.ID, business.Name, business.DiscountPercent, business.RequiredLockAmount,
		business.TTLSeconds, business.TierLabel, business.Active, business.CreatedAt, business.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, business *models.Business) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE businesses
		SET name = $2, discount_percent = $3, required_lock_amount = $4, ttl_seconds = $5,
		    tier_label = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		business.ID, business.Name, business.DiscountPercent, business.RequiredLockAmount,
		business.TTLSeconds, business.TierLabel, business.Active, business.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update business rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, discount_percent, required_lock_amount, ttl_seconds, tier_label, active, created_at, updated_at
		FROM businesses WHERE id = $1`, id)

	var b models.Business
	err := row.Scan(&b.ID, &b.Name, &b.DiscountPercent, &b.RequiredLockAmount,
		&b.TTLSeconds, &b.TierLabel, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find business: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count businesses: %w", err)
	}
	return count, nil
}
