package feed

import (
	"net/http"

	"Subfeed/internal/api/middleware"
	"Subfeed/internal/core/feeds"
)

// GetStatsHandler reports statistics about the user's cached feed
type GetStatsHandler struct {
	service feeds.Service
}

// NewGetStatsHandler creates a new stats handler
func NewGetStatsHandler(service feeds.Service) *GetStatsHandler {
	return &GetStatsHandler{service: service}
}

// HandleGetStats returns cache-derived feed statistics
// GET /feeds/stats
func (h *GetStatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated to view feed stats")
		return
	}

	stats, err := h.service.GetFeedStats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, "fetching feed statistics")
		return
	}

	writeSuccess(w, stats, "Feed statistics retrieved successfully")
}
