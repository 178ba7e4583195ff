package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"Subfeed/internal/metrics"
)

const defaultRefreshReason = "manual"

// ServiceConfig holds the engine's timeouts and sizing
type ServiceConfig struct {
	Fetcher FetcherConfig

	// DirectoryTimeout bounds subscription and follow lookups
	DirectoryTimeout time.Duration

	// ResolveTimeout bounds each display name lookup
	ResolveTimeout time.Duration

	// CacheTimeout bounds each cache clear, put and query
	CacheTimeout time.Duration

	// RefreshLimit is the number of items a refresh materializes
	RefreshLimit int
}

// DefaultServiceConfig returns the engine defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Fetcher:          DefaultFetcherConfig(),
		DirectoryTimeout: 2 * time.Second,
		ResolveTimeout:   500 * time.Millisecond,
		CacheTimeout:     2 * time.Second,
		RefreshLimit:     RefreshLimit,
	}
}

type feedService struct {
	cache         Cache
	subscriptions *SubscriptionResolver
	follows       *FollowResolver
	fetcher       *CandidateFetcher
	materializer  *Materializer
	stats         *StatsAggregator
	logger        *slog.Logger
	now           func() time.Time
	newGeneration func() string
	cacheTimeout  time.Duration
	refreshLimit  int
}

// NewFeedService creates the feed engine over its collaborators
func NewFeedService(
	store ContentStore,
	subscriptions SubscriptionDirectory,
	follows FollowGraph,
	identity IdentityResolver,
	cache Cache,
	cfg ServiceConfig,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RefreshLimit <= 0 || cfg.RefreshLimit > MaxLimit {
		cfg.RefreshLimit = RefreshLimit
	}

	subResolver := NewSubscriptionResolver(subscriptions, cfg.DirectoryTimeout, logger)
	followResolver := NewFollowResolver(follows, cfg.DirectoryTimeout, logger)

	return &feedService{
		cache:         cache,
		subscriptions: subResolver,
		follows:       followResolver,
		fetcher:       NewCandidateFetcher(store, cfg.Fetcher, logger),
		materializer:  NewMaterializer(identity, cfg.ResolveTimeout),
		stats:         NewStatsAggregator(cache, subResolver, followResolver, cfg.CacheTimeout, logger),
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newGeneration: uuid.NewString,
		cacheTimeout:  cfg.CacheTimeout,
		refreshLimit:  cfg.RefreshLimit,
	}
}

// GetFeed retrieves one page of the user's live feed
func (s *feedService) GetFeed(ctx context.Context, userID string, req FeedRequest) (*FeedResponse, error) {
	defer observeDuration("get_feed", time.Now())

	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	items, pagination, err := s.buildFeed(ctx, userID, req, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed: %w", err)
	}

	return &FeedResponse{
		Feeds:      items,
		Pagination: pagination,
		Metadata: FeedMetadata{
			GeneratedAt: now,
			SortType:    req.Sort,
			CacheHit:    false,
		},
	}, nil
}

// RefreshFeed clears the user's cache and stores a freshly built feed.
// Clear and rebuild are separate steps: a concurrent stats read can observe
// an empty or partially written cache.
func (s *feedService) RefreshFeed(ctx context.Context, userID string, req RefreshRequest) (*RefreshResult, error) {
	defer observeDuration("refresh", time.Now())

	if userID == "" {
		return nil, ErrUnauthorized
	}
	if req.Reason == "" {
		req.Reason = defaultRefreshReason
	}

	// Rebuilding through an open breaker would replace a good cache with nothing
	if !s.fetcher.Available() {
		metrics.RefreshTotal.WithLabelValues("store_unavailable").Inc()
		s.logger.Warn("feed refresh skipped: content store unavailable",
			"user", userID,
			"reason", req.Reason)
		return nil, ErrContentUnavailable
	}

	if err := s.clearCache(ctx, userID); err != nil {
		metrics.RefreshTotal.WithLabelValues("clear_failed").Inc()
		s.logger.Error("feed refresh aborted: cache clear failed",
			"user", userID,
			"reason", req.Reason,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrCacheClear, err)
	}

	now := s.now()
	refreshReq := FeedRequest{
		Sort:   SortNew,
		Limit:  s.refreshLimit,
		Offset: 0,
	}
	items, _, err := s.buildFeed(ctx, userID, refreshReq, now)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("build_failed").Inc()
		return nil, fmt.Errorf("failed to rebuild feed: %w", err)
	}

	result := &RefreshResult{
		RefreshedAt: now,
		Generation:  s.newGeneration(),
		Reason:      req.Reason,
	}
	result.NewItemsCount = s.storeItems(ctx, userID, items, result)

	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	metrics.RefreshItems.Observe(float64(result.NewItemsCount))

	s.logger.Info("feed refreshed",
		"user", userID,
		"reason", req.Reason,
		"generation", result.Generation,
		"built", len(items),
		"stored", result.NewItemsCount)

	return result, nil
}

// GetFeedStats summarizes the user's cached feed
func (s *feedService) GetFeedStats(ctx context.Context, userID string) (*FeedStats, error) {
	defer observeDuration("stats", time.Now())

	if userID == "" {
		return nil, ErrUnauthorized
	}

	stats := s.stats.Stats(ctx, userID)
	return &stats, nil
}

// buildFeed runs resolve -> fetch -> filter -> rank -> paginate -> materialize.
// The ranked list is local to this call and is not shared or mutated elsewhere.
func (s *feedService) buildFeed(ctx context.Context, userID string, req FeedRequest, now time.Time) ([]FeedItem, PaginationInfo, error) {
	communityIDs := s.subscriptions.Resolve(ctx, userID)
	authorIDs := s.follows.Resolve(ctx, userID)

	candidates, err := s.fetcher.Fetch(ctx, communityIDs, authorIDs, req.Limit)
	if err != nil && !errors.Is(err, ErrNoSources) {
		return nil, PaginationInfo{}, err
	}

	filtered := ApplyFilters(candidates, req)
	ranked := Rank(filtered, req.Sort, now)
	page, pagination := Paginate(ranked, req.Limit, req.Offset)

	return s.materializer.Materialize(ctx, page), pagination, nil
}

func (s *feedService) clearCache(ctx context.Context, userID string) error {
	ctx, cancel := withOptionalTimeout(ctx, s.cacheTimeout)
	defer cancel()
	return s.cache.Clear(ctx, userID)
}

// storeItems writes each item and returns how many were stored.
// Failed writes are logged and skipped; earlier writes stay in place.
// The cache holds one entry per feed ID, so repeated items are written once.
func (s *feedService) storeItems(ctx context.Context, userID string, items []FeedItem, result *RefreshResult) int {
	stored := 0
	written := make(map[string]struct{}, len(items))

	for _, item := range items {
		if _, dup := written[item.FeedID]; dup {
			continue
		}

		entry := CacheEntry{
			UserID:      userID,
			Item:        item,
			RefreshedAt: result.RefreshedAt,
			Generation:  result.Generation,
		}
		if err := s.putEntry(ctx, entry); err != nil {
			metrics.CacheWriteFailures.Inc()
			s.logger.Warn("failed to store feed item",
				"user", userID,
				"feed_id", item.FeedID,
				"error", err)
			continue
		}

		written[item.FeedID] = struct{}{}
		stored++
	}

	return stored
}

func (s *feedService) putEntry(ctx context.Context, entry CacheEntry) error {
	ctx, cancel := withOptionalTimeout(ctx, s.cacheTimeout)
	defer cancel()
	return s.cache.Put(ctx, entry)
}

func observeDuration(operation string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
