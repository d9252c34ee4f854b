// Package postgres opens the database and keeps the schema current.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS businesses (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		discount_percent INT NOT NULL,
		required_lock_amount BIGINT NOT NULL,
		ttl_seconds INT NOT NULL,
		tier_label TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL REFERENCES businesses(id),
		nonce TEXT NOT NULL,
		status TEXT NOT NULL,
		recovered_address TEXT,
		lock_amount_raw TEXT,
		reason TEXT,
		attest_attempts INT NOT NULL DEFAULT 0,
		expires_at TIMESTAMPTZ NOT NULL,
		redeemed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS audit_entries (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		entry_type TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_business ON sessions (business_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entries_session ON audit_entries (session_id, created_at)`,
}

// EnsureSchema creates the tables the stores expect. Statements are
// idempotent so startup can run this unconditionally.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
