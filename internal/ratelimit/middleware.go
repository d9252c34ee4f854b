package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "lockpass/pkg/domain-errors"
	"lockpass/pkg/platform/httputil"
)

// Middleware admits or rejects requests per client IP.
type Middleware struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewMiddleware(store Store, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, limit: limit, window: window, logger: logger}
}

// Handler wraps next with the admission check. A store failure fails open:
// losing the throttle is better than refusing all traffic while Redis is
// down.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		res, err := m.store.Allow(r.Context(), key, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "rate limit check failed",
				"key", key,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retryAfter := int(time.Until(res.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the socket
// peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
