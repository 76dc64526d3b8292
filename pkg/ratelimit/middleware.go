package ratelimit

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds per-IP rate limiting configuration for credential endpoints.
// Login attempts are the expensive path (a bcrypt verify per request), so
// they get a much tighter budget than the rest of the API.
type Config struct {
	Enabled    bool          `env:"LOGIN_RATE_LIMIT_ENABLED" env-default:"true"`
	Capacity   int           `env:"LOGIN_RATE_LIMIT_BURST" env-default:"10"`
	RefillRate float64       `env:"LOGIN_RATE_LIMIT_PER_SECOND" env-default:"0.5"`
	BucketTTL  time.Duration `env:"LOGIN_RATE_LIMIT_BUCKET_TTL" env-default:"1h"`
}

// Middleware rate limits requests per client IP
type Middleware struct {
	config  Config
	limiter *RateLimiter
}

// NewMiddleware creates a new per-IP rate limiting middleware
func NewMiddleware(config Config) *Middleware {
	m := &Middleware{config: config}
	if config.Enabled {
		m.limiter = NewRateLimiter(config.Capacity, config.RefillRate, config.BucketTTL)
	}
	return m
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := getClientIP(r)
		if ip != "" && !m.limiter.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path, "method", r.Method)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message": "too many requests"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
