package routes

import (
	"Subfeed/internal/api/handlers/feed"
	"Subfeed/internal/api/middleware"
	"Subfeed/internal/core/feeds"

	"github.com/go-chi/chi/v5"
)

// RegisterFeedRoutes registers the feed endpoints.
// All of them require the X-User-ID header; refresh is additionally
// limited per user.
func RegisterFeedRoutes(
	r chi.Router,
	feedService feeds.Service,
	refreshLimiter *middleware.UserRateLimiter,
) {
	getFeedHandler := feed.NewGetFeedHandler(feedService)
	refreshHandler := feed.NewRefreshFeedHandler(feedService)
	statsHandler := feed.NewGetStatsHandler(feedService)

	r.Route("/feeds", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		// GET /feeds?sort=new&limit=20&offset=0
		r.Get("/", getFeedHandler.HandleGetFeed)

		// POST /feeds/refresh
		if refreshLimiter != nil {
			r.With(refreshLimiter.Middleware).Post("/refresh", refreshHandler.HandleRefreshFeed)
		} else {
			r.Post("/refresh", refreshHandler.HandleRefreshFeed)
		}

		// GET /feeds/stats
		r.Get("/stats", statsHandler.HandleGetStats)
	})
}
