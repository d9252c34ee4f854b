// Package ratelimit throttles the write endpoints with a sliding window.
// Session creation and attestation are the abuse surface: both are
// unauthenticated and one of them burns on-chain RPC calls.
package ratelimit

import (
	"context"
	"time"
)

// Result reports one admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Store decides whether a request under key is admitted within the window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
