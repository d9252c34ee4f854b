package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lockpass/internal/business/models"
	"lockpass/internal/business/service"
	"lockpass/internal/platform/middleware"
	dErrors "lockpass/pkg/domain-errors"
	"lockpass/pkg/platform/httputil"
)

// Service defines the admin-facing business operations.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.Business, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Handler exposes the admin CRUD surface for merchant configuration.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register mounts the admin routes behind JWT auth.
func (h *Handler) Register(r chi.Router) {
	admin := chi.NewRouter()
	admin.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	admin.Post("/", h.handleCreate)
	admin.Get("/{id}", h.handleGet)
	admin.Post("/{id}/deactivate", h.handleDeactivate)
	r.Mount("/admin/businesses", admin)
}

// BusinessResponse is the admin view of a business record.
type BusinessResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	DiscountPercent    int       `json:"discountPercent"`
	RequiredLockAmount int64     `json:"requiredLockAmount"`
	TTLSeconds         int       `json:"ttlSeconds"`
	TierLabel          string    `json:"tierLabel,omitempty"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"createdAt"`
}

func fromBusiness(b *models.Business) *BusinessResponse {
	return &BusinessResponse{
		ID:                 b.ID,
		Name:               b.Name,
		DiscountPercent:    b.DiscountPercent,
		RequiredLockAmount: b.RequiredLockAmount,
		TTLSeconds:         b.TTLSeconds,
		TierLabel:          b.TierLabel,
		Active:             b.Active,
		CreatedAt:          b.CreatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateBusinessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	b, err := h.service.Create(ctx, service.CreateParams{
		Name:               req.Name,
		DiscountPercent:    req.DiscountPercent,
		RequiredLockAmount: req.RequiredLockAmount,
		TTLSeconds:         req.TTLSeconds,
		TierLabel:          req.TierLabel,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create business",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromBusiness(b))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid business id"))
		return
	}

	b, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromBusiness(b))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid business id"))
		return
	}

	if err := h.service.Deactivate(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
