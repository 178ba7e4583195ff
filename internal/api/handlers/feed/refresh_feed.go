package feed

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"Subfeed/internal/api/middleware"
	"Subfeed/internal/core/feeds"
)

const maxRefreshBodyBytes = 4 << 10

// RefreshFeedHandler rebuilds the user's cached feed
type RefreshFeedHandler struct {
	service feeds.Service
}

// NewRefreshFeedHandler creates a new refresh handler
func NewRefreshFeedHandler(service feeds.Service) *RefreshFeedHandler {
	return &RefreshFeedHandler{service: service}
}

// HandleRefreshFeed clears and rebuilds the user's feed cache
// POST /feeds/refresh
// Body (optional): {"reason": "subscribed", "communityId": "...", "userId": "..."}
func (h *RefreshFeedHandler) HandleRefreshFeed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated to refresh feeds")
		return
	}

	var req feeds.RefreshRequest
	body := http.MaxBytesReader(w, r.Body, maxRefreshBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid JSON in request body")
		return
	}

	result, err := h.service.RefreshFeed(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err, "refreshing feed")
		return
	}

	writeSuccess(w, result, "Feed refreshed successfully")
}
