package handler

import (
	"strings"

	"github.com/google/uuid"

	dErrors "lockpass/pkg/domain-errors"
)

// CreateSessionRequest is the HTTP request body for POST /sessions.
type CreateSessionRequest struct {
	BusinessID uuid.UUID `json:"businessId"`
}

// Validate implements httputil.Validatable.
func (r *CreateSessionRequest) Validate() error {
	if r.BusinessID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "businessId is required")
	}
	return nil
}

// AttestRequest is the HTTP request body for POST /attest.
type AttestRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
	Signature string    `json:"signature"`
}

// Validate implements httputil.Validatable.
func (r *AttestRequest) Validate() error {
	if r.SessionID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "sessionId is required")
	}
	r.Signature = strings.TrimSpace(r.Signature)
	if r.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "signature is required")
	}
	return nil
}
