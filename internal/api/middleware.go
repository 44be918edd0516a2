/**
 * @description
 * Request middleware for the subscription-service. User identity comes
 * from the X-User-Id header set by the edge proxy, with a user_id query
 * parameter fallback for local use.
 */
package api

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserAuthMiddleware extracts the caller's user ID and stores it on the
// request context. Requests with no identity are rejected.
func UserAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			userID = r.URL.Query().Get("user_id")
		}
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext retrieves the user ID injected by UserAuthMiddleware.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
