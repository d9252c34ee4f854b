package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lockpass/internal/session/models"
	"lockpass/pkg/platform/sentinel"
)

// PostgresStore persists sessions in PostgreSQL. The version column carries
// the optimistic concurrency check; Save compares and increments it in one
// statement so racing writers serialize at the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, business_id, nonce, status, recovered_address, lock_amount_raw,
		                      reason, attest_attempts, expires_at, redeemed_at, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		session.ID, session.BusinessID, session.Nonce, string(session.Status),
		nullable(session.RecoveredAddress), nullable(session.LockAmountRaw), nullable(session.Reason),
		session.AttestAttempts, session.ExpiresAt, session.RedeemedAt, session.CreatedAt, session.Version,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, nonce, status, recovered_address, lock_amount_raw,
		       reason, attest_attempts, expires_at, redeemed_at, created_at, version
		FROM sessions WHERE id = $1`, id)

	var (
		sess                    models.Session
		status                  string
		recovered, lockRaw, why sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.BusinessID, &sess.Nonce, &status, &recovered, &lockRaw,
		&why, &sess.AttestAttempts, &sess.ExpiresAt, &sess.RedeemedAt, &sess.CreatedAt, &sess.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	sess.Status = models.Status(status)
	sess.RecoveredAddress = recovered.String
	sess.LockAmountRaw = lockRaw.String
	sess.Reason = why.String
	return &sess, nil
}

func (s *PostgresStore) Save(ctx context.Context, session *models.Session) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $3, recovered_address = $4, lock_amount_raw = $5, reason = $6,
		    attest_attempts = $7, redeemed_at = $8, version = version + 1
		WHERE id = $1 AND version = $2`,
		session.ID, session.Version, string(session.Status),
		nullable(session.RecoveredAddress), nullable(session.LockAmountRaw), nullable(session.Reason),
		session.AttestAttempts, session.RedeemedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session rows affected: %w", err)
	}
	if rows == 0 {
		// Either the row is gone or another writer won the version race.
		if _, findErr := s.FindByID(ctx, session.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	session.Version++
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
