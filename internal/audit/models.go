package audit

import (
	"time"

	"github.com/google/uuid"
)

// EntryType names a session lifecycle event.
type EntryType string

const (
	EntrySessionCreated EntryType = "SESSION_CREATED"
	EntryAttestOK       EntryType = "ATTEST_OK"
	EntryAttestFail     EntryType = "ATTEST_FAIL"
	EntryExpired        EntryType = "EXPIRED"
	EntryRedeemed       EntryType = "REDEEMED"
)

// Entry is an append-only lifecycle record. Entries are the only forensic
// trail for rejected and expired sessions, so they are never mutated or
// deleted by the core.
type Entry struct {
	SessionID uuid.UUID
	Type      EntryType
	Payload   map[string]any
	Timestamp time.Time
}
