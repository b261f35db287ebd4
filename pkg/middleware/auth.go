package middleware

import (
	"context"
	"net/http"

	"github.com/expensyapp/expensy/internal/identity"
	"github.com/expensyapp/expensy/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserKey is the context key for the authenticated user
	UserKey ContextKey = "user"
)

// Identity extracts the authenticated user forwarded by the auth gateway.
// Authentication itself happens upstream against the identity provider; the
// API trusts the X-User-* headers set by the gateway after token validation.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := identity.User{
			ID:    r.Header.Get("X-User-ID"),
			Email: r.Header.Get("X-User-Email"),
			Name:  r.Header.Get("X-User-Name"),
		}
		if !user.Valid() {
			response.Unauthorized(w, "User identity required")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context
func GetUser(ctx context.Context) (identity.User, bool) {
	user, ok := ctx.Value(UserKey).(identity.User)
	return user, ok && user.Valid()
}
