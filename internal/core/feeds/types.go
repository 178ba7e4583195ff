package feeds

import (
	"time"
)

// SortType selects the ranking algorithm for a feed request
type SortType string

const (
	SortNew      SortType = "new"
	SortHot      SortType = "hot"
	SortTop      SortType = "top"
	SortTrending SortType = "trending"
)

// Request limits and defaults
const (
	DefaultLimit = 20
	MaxLimit     = 100

	// RefreshLimit is how many items a refresh materializes into the cache
	RefreshLimit = 100

	// TopGroupsLimit caps the top communities/authors lists in stats
	TopGroupsLimit = 5

	// ContentPreviewLength is the preview size in grapheme clusters
	ContentPreviewLength = 200
)

// FeedRequest represents input for fetching a user's personalized feed.
// Bounds are enforced by ValidateRequest before any fetch happens.
type FeedRequest struct {
	CommunityID     *string  `json:"communityId,omitempty"`
	AuthorID        *string  `json:"authorId,omitempty"`
	Sort            SortType `json:"sort" validate:"oneof=new hot top trending"`
	Limit           int      `json:"limit" validate:"min=1,max=100"`
	Offset          int      `json:"offset" validate:"min=0"`
	IncludeNSFW     bool     `json:"includeNSFW"`
	IncludeSpoilers bool     `json:"includeSpoilers"`
}

// CandidatePost is a post fetched from a subscription or follow source,
// before filtering and ranking. It is read-only input owned by the content store.
type CandidatePost struct {
	CreatedAt    time.Time `json:"createdAt"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	PostID       string    `json:"postId"`
	CommunityID  string    `json:"communityId"`
	AuthorID     string    `json:"authorId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	Score        int       `json:"score"`
	CommentCount int       `json:"commentCount"`
	NSFW         bool      `json:"nsfw"`
	Spoiler      bool      `json:"spoiler"`
	Pinned       bool      `json:"pinned"`
}

// FeedItem is the denormalized display unit built from a CandidatePost
type FeedItem struct {
	CreatedAt      time.Time `json:"createdAt"`
	ImageURL       *string   `json:"postImageUrl,omitempty"`
	FeedID         string    `json:"feedId"`
	PostID         string    `json:"postId"`
	CommunityID    string    `json:"communityId"`
	AuthorID       string    `json:"authorId"`
	CommunityName  string    `json:"communityName"`
	AuthorName     string    `json:"authorName"`
	Title          string    `json:"postTitle"`
	ContentPreview string    `json:"postContent"`
	Tags           []string  `json:"tags"`
	Upvotes        int       `json:"upvotes"`
	Downvotes      int       `json:"downvotes"`
	Score          int       `json:"postScore"`
	CommentCount   int       `json:"commentsCount"`
	NSFW           bool      `json:"isNSFW"`
	Spoiler        bool      `json:"isSpoiler"`
	Pinned         bool      `json:"isPinned"`
}

// CacheEntry is one materialized feed item stored for a user.
// Entries are ordered by the item's CreatedAt within a user's namespace.
type CacheEntry struct {
	RefreshedAt time.Time `json:"refreshedAt"`
	UserID      string    `json:"userId"`
	Generation  string    `json:"generation"`
	Item        FeedItem  `json:"item"`
}

// PaginationInfo describes the page returned from an offset-paginated list
type PaginationInfo struct {
	NextOffset *int `json:"nextOffset"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Total      int  `json:"total"`
	HasMore    bool `json:"hasMore"`
}

// FeedMetadata describes how a feed response was produced
type FeedMetadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	SortType    SortType  `json:"sortType"`
	CacheHit    bool      `json:"cacheHit"`
}

// FeedResponse is the output of GetFeed
type FeedResponse struct {
	Feeds      []FeedItem     `json:"feeds"`
	Pagination PaginationInfo `json:"pagination"`
	Metadata   FeedMetadata   `json:"metadata"`
}

// RefreshRequest carries the caller's reason for a refresh.
// CommunityID and AuthorID are informational (what change triggered the refresh).
type RefreshRequest struct {
	CommunityID *string `json:"communityId,omitempty"`
	AuthorID    *string `json:"userId,omitempty"`
	Reason      string  `json:"reason"`
}

// RefreshResult is the output of RefreshFeed
type RefreshResult struct {
	RefreshedAt   time.Time `json:"refreshedAt"`
	Generation    string    `json:"generation"`
	Reason        string    `json:"reason"`
	NewItemsCount int       `json:"newItemsCount"`
}

// GroupStats aggregates cached items for one community or author
type GroupStats struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PostCount    int     `json:"postCount"`
	AverageScore float64 `json:"averageScore"`
}

// FeedStats summarizes a user's materialized feed cache
type FeedStats struct {
	LastRefreshAt      *time.Time   `json:"lastRefreshAt"`
	TopCommunities     []GroupStats `json:"topCommunities"`
	TopAuthors         []GroupStats `json:"topAuthors"`
	TotalSubscriptions int          `json:"totalSubscriptions"`
	TotalFollowing     int          `json:"totalFollowing"`
	FeedItemsCount     int          `json:"feedItemsCount"`
	AverageScore       float64      `json:"averageScore"`
}
