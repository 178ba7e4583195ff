package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"Subfeed/internal/core/feeds"
)

// ErrorResponse is the JSON body of a failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// SuccessResponse wraps the data of a successful request
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	Success bool        `json:"success"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error:   errorType,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// writeSuccess writes data inside the success envelope
func writeSuccess(w http.ResponseWriter, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	resp := SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers already sent
		slog.Error("failed to encode feed response", "error", err)
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error, operation string) {
	var ve *feeds.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "InvalidRequest", ve.Message)
	case errors.Is(err, feeds.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated")
	case errors.Is(err, feeds.ErrCacheClear):
		slog.Error("feed cache unavailable", "operation", operation, "error", err)
		writeError(w, http.StatusServiceUnavailable, "CacheUnavailable", "Failed to refresh feed")
	case errors.Is(err, feeds.ErrContentUnavailable):
		writeError(w, http.StatusServiceUnavailable, "ContentUnavailable", "Content is temporarily unavailable, try again later")
	default:
		slog.Error("feed service error", "operation", operation, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An error occurred while "+operation)
	}
}
