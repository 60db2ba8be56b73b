package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// Config tunes the per-IP throttle on the credential endpoints
type Config struct {
	Capacity   int     // burst budget per client IP
	RefillRate float64 // requests per second restored per client IP
	BucketTTL  time.Duration
}

// DefaultConfig allows a burst of 10 login attempts per IP, refilling at
// 10 per minute
func DefaultConfig() Config {
	return Config{
		Capacity:   10,
		RefillRate: 10.0 / 60.0,
		BucketTTL:  time.Hour,
	}
}

// PerIP returns a middleware that rejects clients exceeding the budget
// with 429. The account lockout governor still applies underneath; this
// only blunts high-rate guessing from a single source.
func PerIP(config Config) func(http.Handler) http.Handler {
	limiter := NewKeyedLimiter(config.Capacity, config.RefillRate, config.BucketTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip != "" && !limiter.Allow(ip) {
				slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]string{
					"code":    "TOO_MANY_REQUESTS",
					"message": "too many requests, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts RealIP-style middleware upstream and falls back to the
// connection address
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
