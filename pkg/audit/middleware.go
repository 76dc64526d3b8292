// Package audit provides middleware for auditing authenticated HTTP requests
package audit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/simple-tasks/pkg/identity"
)

// Config holds the configuration for the audit middleware
type Config struct {
	// Source names the service emitting the audit records
	Source string
	// Logger receives the audit records. Defaults to slog.Default().
	Logger *slog.Logger
}

// Middleware records an audit line for each authenticated request
type Middleware struct {
	config Config
}

// NewMiddleware creates a new audit middleware instance
func NewMiddleware(config Config) *Middleware {
	if config.Source == "" {
		config.Source = "simple-tasks"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Middleware{
		config: config,
	}
}

// AuditAuthMiddleware logs who did what. Runs after AuthUserMiddleware so
// the caller identity is available on the context.
func (m *Middleware) AuditAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attrs := []any{
			"source", m.config.Source,
			"method", r.Method,
			"uri", r.RequestURI,
			"timestamp", time.Now().Format(time.RFC3339),
		}

		if authUser, ok := identity.AuthUserFromContext(r.Context()); ok {
			attrs = append(attrs, "user", authUser.UserID.String(), "username", authUser.Username)
		} else {
			attrs = append(attrs, "user", "")
		}

		m.config.Logger.Info("audit", attrs...)

		next.ServeHTTP(w, r)
	})
}
