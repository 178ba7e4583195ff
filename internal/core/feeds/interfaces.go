package feeds

import "context"

// Service defines the feed engine operations exposed to the API layer.
//
// GetFeed recomputes the feed live from the content sources on every call and
// never reads the cache. The cache is written only by RefreshFeed and read only
// by GetFeedStats, so stats describe the most recent refresh rather than what
// GetFeed would currently return.
//
// Pagination is offset based over a list rebuilt per call. Page N+1 can drift
// relative to page N when posts are written in between.
type Service interface {
	// GetFeed returns one page of the user's ranked, filtered feed
	GetFeed(ctx context.Context, userID string, req FeedRequest) (*FeedResponse, error)

	// RefreshFeed clears the user's cache and rebuilds it from a sort=new pipeline run
	RefreshFeed(ctx context.Context, userID string, req RefreshRequest) (*RefreshResult, error)

	// GetFeedStats aggregates the user's cached feed
	GetFeedStats(ctx context.Context, userID string) (*FeedStats, error)
}

// ContentStore returns the most recent posts of a community or author,
// newest first, at most limit items
type ContentStore interface {
	QueryByCommunity(ctx context.Context, communityID string, limit int) ([]CandidatePost, error)
	QueryByAuthor(ctx context.Context, authorID string, limit int) ([]CandidatePost, error)
}

// SubscriptionDirectory lists the communities a user subscribes to
type SubscriptionDirectory interface {
	ListCommunities(ctx context.Context, userID string) ([]string, error)
}

// FollowGraph lists the authors a user follows
type FollowGraph interface {
	ListFollowing(ctx context.Context, userID string) ([]string, error)
}

// IdentityResolver resolves display names. ok is false on a miss or lookup
// failure; callers decide the fallback.
type IdentityResolver interface {
	CommunityName(ctx context.Context, communityID string) (name string, ok bool)
	AuthorName(ctx context.Context, authorID string) (name string, ok bool)
}

// Cache stores materialized feed entries per user.
// Clear and Put are separate operations; there is no transaction spanning them.
type Cache interface {
	Clear(ctx context.Context, userID string) error
	Put(ctx context.Context, entry CacheEntry) error
	Query(ctx context.Context, userID string) ([]CacheEntry, error)
}
