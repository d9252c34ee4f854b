package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating admin JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	Subject string
	Role    string
}

type contextKeyAdminSubject struct{}

// ContextKeyAdminSubject is exported for use in handlers and tests.
var ContextKeyAdminSubject = contextKeyAdminSubject{}

// GetAdminSubject retrieves the authenticated admin subject from the context.
func GetAdminSubject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeyAdminSubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireAuth guards admin routes with bearer-token JWT validation.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					ctx := r.Context()
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					writeUnauthorized(w, "Invalid or expired token")
					return
				}

				ctx := context.WithValue(r.Context(), ContextKeyAdminSubject, claims.Subject)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// No Authorization header or invalid format
			ctx := r.Context()
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", GetRequestID(ctx),
			)
			writeUnauthorized(w, "Missing or invalid Authorization header")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
