package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const (
	// UserIDKey is the context key for the requesting user's id
	UserIDKey contextKey = "user_id"

	// UserIDHeader carries the caller's user id, set by the upstream gateway
	UserIDHeader = "X-User-ID"

	maxUserIDLength = 256
)

// RequireUser extracts the user id from the X-User-ID header.
// Requests without one are rejected with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			slog.Debug("missing user id header", "method", r.Method, "path", r.URL.Path)
			writeAuthError(w, "Missing "+UserIDHeader+" header")
			return
		}
		if len(userID) > maxUserIDLength {
			writeAuthError(w, "Invalid "+UserIDHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the user id attached by RequireUser, or ""
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(UserIDKey).(string)
	return userID
}

// SetTestUserID attaches a user id to a context, for handler tests
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := map[string]interface{}{
		"error":   "AuthenticationRequired",
		"message": message,
		"success": false,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write auth error response", "error", err)
	}
}
