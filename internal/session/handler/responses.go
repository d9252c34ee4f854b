package handler

import (
	"time"

	"github.com/google/uuid"

	"lockpass/internal/session/models"
	"lockpass/internal/session/service"
)

// SessionCreatedResponse is returned from POST /sessions. It carries the
// discount terms so the merchant terminal can render the offer without a
// second lookup.
type SessionCreatedResponse struct {
	SessionID          uuid.UUID `json:"sessionId"`
	ExpiresAt          time.Time `json:"expiresAt"`
	DiscountPercent    int       `json:"discountPercent"`
	RequiredLockAmount int64     `json:"requiredLockAmount"`
	TierLabel          string    `json:"tierLabel,omitempty"`
}

// ChallengeResponse carries the exact plaintext the wallet must sign.
type ChallengeResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
}

// AttestResponse reports the outcome of one attestation attempt. Wallet and
// eligibility are absent when the signature itself could not be verified.
type AttestResponse struct {
	Status   models.Status `json:"status"`
	Wallet   string        `json:"wallet,omitempty"`
	Eligible *bool         `json:"eligible,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

func fromAttestResult(res *service.AttestResult) *AttestResponse {
	return &AttestResponse{
		Status:   res.Status,
		Wallet:   res.Wallet,
		Eligible: res.Eligible,
		Reason:   res.Reason,
	}
}

// SessionResponse is the polling view of a session.
type SessionResponse struct {
	SessionID        uuid.UUID     `json:"sessionId"`
	BusinessID       uuid.UUID     `json:"businessId"`
	Status           models.Status `json:"status"`
	AttestAttempts   int           `json:"attestAttempts"`
	ExpiresAt        time.Time     `json:"expiresAt"`
	RecoveredAddress string        `json:"recoveredAddress,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	RedeemedAt       *time.Time    `json:"redeemedAt,omitempty"`
}

func fromSession(sess *models.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:        sess.ID,
		BusinessID:       sess.BusinessID,
		Status:           sess.Status,
		AttestAttempts:   sess.AttestAttempts,
		ExpiresAt:        sess.ExpiresAt,
		RecoveredAddress: sess.RecoveredAddress,
		Reason:           sess.Reason,
		RedeemedAt:       sess.RedeemedAt,
	}
}
