package controller

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"storefront/apperrors"
)

// UserIDHeader carries the caller identity set by the upstream auth proxy
const UserIDHeader = "X-User-ID"

type ctxKey int

const userIDKey ctxKey = iota

// WithUserID returns a context carrying the caller's user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the caller's user id, or "" outside an authenticated route
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RequireUser rejects requests without an X-User-ID header
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			writeError(w, "RequireUser", apperrors.Unauthorized("missing "+UserIDHeader+" header"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// RequireAdmin accepts requests that carry a user id and
// "Authorization: Bearer <token>". An empty token disables admin routes.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, "RequireAdmin", apperrors.Forbidden("admin access is not configured"))
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, "RequireAdmin", apperrors.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
