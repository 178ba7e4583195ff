package feed

import (
	"fmt"
	"net/http"
	"strconv"

	"Subfeed/internal/api/middleware"
	"Subfeed/internal/core/feeds"
)

// GetFeedHandler serves a page of the user's live feed
type GetFeedHandler struct {
	service feeds.Service
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(service feeds.Service) *GetFeedHandler {
	return &GetFeedHandler{service: service}
}

// HandleGetFeed retrieves the user's personalized feed
// GET /feeds?sort=hot&limit=20&offset=0&includeNSFW=false&includeSpoilers=false&communityId=...&authorId=...
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthenticationRequired", "User must be authenticated to view feeds")
		return
	}

	req, err := parseFeedRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	response, err := h.service.GetFeed(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err, "fetching feed")
		return
	}

	writeSuccess(w, response, "Feed retrieved successfully")
}

// parseFeedRequest reads query parameters into a FeedRequest.
// Bounds are checked by the service; only malformed values fail here.
func parseFeedRequest(r *http.Request) (feeds.FeedRequest, error) {
	q := r.URL.Query()
	req := feeds.FeedRequest{
		Sort:  feeds.SortNew,
		Limit: feeds.DefaultLimit,
	}

	if sort := q.Get("sort"); sort != "" {
		req.Sort = feeds.SortType(sort)
	}

	var err error
	if req.Limit, err = intParam(q.Get("limit"), "limit", req.Limit); err != nil {
		return req, err
	}
	if req.Offset, err = intParam(q.Get("offset"), "offset", 0); err != nil {
		return req, err
	}
	if req.IncludeNSFW, err = boolParam(q.Get("includeNSFW"), "includeNSFW"); err != nil {
		return req, err
	}
	if req.IncludeSpoilers, err = boolParam(q.Get("includeSpoilers"), "includeSpoilers"); err != nil {
		return req, err
	}

	if communityID := q.Get("communityId"); communityID != "" {
		req.CommunityID = &communityID
	}
	if authorID := q.Get("authorId"); authorID != "" {
		req.AuthorID = &authorID
	}

	return req, nil
}

func intParam(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func boolParam(raw, name string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", name)
	}
	return v, nil
}
