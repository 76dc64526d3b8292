package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// AuthUser is the authenticated caller extracted from a verified access token
type AuthUser struct {
	UserID   uuid.UUID
	Username string
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", u.UserID.String()),
		slog.String("username", u.Username),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "identity context value " + k.name
}

var AuthUserKey = &contextKey{"AuthUser"}

// AuthUserFromContext returns the AuthUser set by AuthUserMiddleware
func AuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	authUser, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return authUser, ok
}

// AuthUserMiddleware turns verified jwtauth claims into an AuthUser on the
// request context. Runs after jwtauth.Verifier/Authenticator.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, "missing jwt", http.StatusUnauthorized)
			return
		}

		subject, _ := claims["sub"].(string)
		if subject == "" {
			http.Error(w, "missing subject", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(subject)
		if err != nil {
			slog.Error("failed to parse token subject", "err", err)
			http.Error(w, "invalid subject", http.StatusUnauthorized)
			return
		}

		username, _ := claims["username"].(string)

		authUser := &AuthUser{
			UserID:   userID,
			Username: username,
		}

		ctx := context.WithValue(r.Context(), AuthUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
