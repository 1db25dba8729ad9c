package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit wraps next with a coarse, per-process inbound limiter. It is
// deliberately simple: one token bucket shared across all callers, ahead of
// the upstream request, not a per-client or per-API-key scheme.
func RateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
