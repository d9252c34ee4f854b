package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists audit entries in PostgreSQL. Payloads are stored as
// JSONB so downstream queries can filter on structured fields.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, session_id, entry_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), entry.SessionID, string(entry.Type), payload, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, entry_type, payload, created_at
		FROM audit_entries WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			rawType string
			payload []byte
		)
		if err := rows.Scan(&entry.SessionID, &rawType, &payload, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Type = EntryType(rawType)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
