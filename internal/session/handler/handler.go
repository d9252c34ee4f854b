// Package handler exposes the public session attestation API.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lockpass/internal/platform/middleware"
	"lockpass/internal/session/models"
	"lockpass/internal/session/service"
	dErrors "lockpass/pkg/domain-errors"
	"lockpass/pkg/platform/httputil"
)

// Service defines the session lifecycle operations consumed over HTTP.
type Service interface {
	Create(ctx context.Context, businessID uuid.UUID) (*service.CreateResult, error)
	ChallengeMessage(ctx context.Context, sessionID uuid.UUID) (string, error)
	Attest(ctx context.Context, sessionID uuid.UUID, signature string) (*service.AttestResult, error)
	Redeem(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

// Handler serves the session endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	limit   func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithRateLimit guards session creation and attestation with the given
// middleware. Read endpoints stay unthrottled.
func WithRateLimit(limit func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.limit = limit }
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the session routes.
func (h *Handler) Register(r chi.Router) {
	write := r
	if h.limit != nil {
		write = r.With(h.limit)
	}
	write.Post("/sessions", h.handleCreate)
	write.Post("/attest", h.handleAttest)

	r.Get("/sessions/{id}", h.handleGet)
	r.Get("/sessions/{id}/challenge", h.handleChallenge)
	r.Post("/sessions/{id}/redeem", h.handleRedeem)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Create(ctx, req.BusinessID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session",
			"request_id", requestID,
			"business_id", req.BusinessID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &SessionCreatedResponse{
		SessionID:          res.SessionID,
		ExpiresAt:          res.ExpiresAt,
		DiscountPercent:    res.DiscountPercent,
		RequiredLockAmount: res.RequiredLockAmount,
		TierLabel:          res.TierLabel,
	})
}

func (h *Handler) handleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	message, err := h.service.ChallengeMessage(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ChallengeResponse{SessionID: id, Message: message})
}

func (h *Handler) handleAttest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AttestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Attest(ctx, req.SessionID, req.Signature)
	if err != nil {
		h.logger.WarnContext(ctx, "attestation not processed",
			"request_id", requestID,
			"session_id", req.SessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAttestResult(res))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSession(sess))
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.service.Redeem(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "redemption refused",
			"request_id", middleware.GetRequestID(ctx),
			"session_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSession(sess))
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}
