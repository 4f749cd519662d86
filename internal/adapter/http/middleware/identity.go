package middleware

import (
	"context"
	"net/http"
)

type contextKey string

// UserIDKey is the context key carrying the authenticated user's ID.
const UserIDKey contextKey = "user_id"

// UserIDHeader is set by the API gateway after it authenticates the
// caller. This service trusts the header; it never sees credentials.
const UserIDHeader = "X-User-ID"

// Identity extracts the gateway-authenticated user ID into the request
// context. Requests without one are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing user identity"}`))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
