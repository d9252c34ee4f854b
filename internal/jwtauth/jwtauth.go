// Package jwtauth issues and validates the HS256 bearer tokens that guard
// the admin API.
package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lockpass/internal/platform/middleware"
	dErrors "lockpass/pkg/domain-errors"
)

const (
	issuer   = "lockpass"
	audience = "lockpass-admin"
)

// Claims are the admin token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates admin tokens.
type Service struct {
	signingKey []byte
}

func New(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey)}
}

// GenerateToken mints an admin token for subject. Used by operator tooling
// and tests; the server only validates.
func (s *Service) GenerateToken(subject, role string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			Audience:  []string{audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken implements middleware.JWTValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{Subject: claims.Subject, Role: claims.Role}, nil
}
