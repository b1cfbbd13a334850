package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/securitycam/central/internal/ratelimit"
)

// RateLimit applies a per-client-IP window. Redis outages fail open: the
// limiter protects the pool, it is not a correctness gate.
func RateLimit(limiter *ratelimit.Limiter, cfg ratelimit.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			decision, err := limiter.Check(r.Context(), ip, cfg)
			if err != nil {
				log.Printf("rate limit check failed (allowing): %v", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
				http.Error(w, `{"error":"rate limit exceeded","kind":"unavailable"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
