package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the session lifecycle state. Transitions are monotonic: once a
// session leaves PENDING it never returns, and REJECTED, EXPIRED and
// REDEEMED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
	StatusRedeemed Status = "REDEEMED"
)

// MaxAttestAttempts is the per-session attestation budget.
const MaxAttestAttempts = 3

// transitions is the full forward graph.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusExpired},
	StatusApproved: {StatusRedeemed, StatusExpired},
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is one challenge/response exchange between a wallet and a
// business's eligibility rule. Version backs optimistic concurrency on
// writes; every committed save increments it.
type Session struct {
	ID               uuid.UUID
	BusinessID       uuid.UUID
	Nonce            string
	Status           Status
	RecoveredAddress string
	LockAmountRaw    string
	Reason           string
	AttestAttempts   int
	ExpiresAt        time.Time
	RedeemedAt       *time.Time
	CreatedAt        time.Time
	Version          int64
}

// NewSession creates a PENDING session with a fresh single-use nonce.
// ExpiresAt is fixed here and never extended.
func NewSession(businessID uuid.UUID, ttl time.Duration, now time.Time) (*Session, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:         uuid.New(),
		BusinessID: businessID,
		Nonce:      nonce,
		Status:     StatusPending,
		ExpiresAt:  now.Add(ttl).UTC(),
		CreatedAt:  now.UTC(),
	}, nil
}

// Expired reports whether the session's TTL has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Transition moves the session to next, enforcing the forward graph.
func (s *Session) Transition(next Status) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal transition %s -> %s", s.Status, next)
	}
	s.Status = next
	return nil
}

// newNonce returns 32 cryptographically random bytes, hex-encoded.
func newNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
