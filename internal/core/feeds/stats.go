package feeds

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// StatsAggregator computes feed statistics from the materialized cache only
type StatsAggregator struct {
	cache         Cache
	subscriptions *SubscriptionResolver
	follows       *FollowResolver
	logger        *slog.Logger
	cacheTimeout  time.Duration
}

// NewStatsAggregator creates a stats aggregator
func NewStatsAggregator(
	cache Cache,
	subscriptions *SubscriptionResolver,
	follows *FollowResolver,
	cacheTimeout time.Duration,
	logger *slog.Logger,
) *StatsAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsAggregator{
		cache:         cache,
		subscriptions: subscriptions,
		follows:       follows,
		cacheTimeout:  cacheTimeout,
		logger:        logger,
	}
}

// Stats summarizes the user's cached feed. An empty or unreadable cache
// yields zero counts and empty top lists.
func (a *StatsAggregator) Stats(ctx context.Context, userID string) FeedStats {
	entries := a.readCache(ctx, userID)

	stats := Aggregate(entries)
	stats.TotalSubscriptions = len(a.subscriptions.Resolve(ctx, userID))
	stats.TotalFollowing = len(a.follows.Resolve(ctx, userID))

	return stats
}

func (a *StatsAggregator) readCache(ctx context.Context, userID string) []CacheEntry {
	ctx, cancel := withOptionalTimeout(ctx, a.cacheTimeout)
	defer cancel()

	entries, err := a.cache.Query(ctx, userID)
	if err != nil {
		a.logger.Warn("failed to read feed cache, reporting empty stats",
			"user", userID,
			"error", err)
		return nil
	}
	return entries
}

// Aggregate computes the cache-derived part of FeedStats: item count,
// average score, last refresh time and the top communities and authors.
func Aggregate(entries []CacheEntry) FeedStats {
	stats := FeedStats{
		TopCommunities: []GroupStats{},
		TopAuthors:     []GroupStats{},
	}
	if len(entries) == 0 {
		return stats
	}

	communities := newGroupCounter()
	authors := newGroupCounter()
	var scoreSum int

	for _, entry := range entries {
		item := entry.Item
		scoreSum += item.Score
		communities.add(item.CommunityID, item.CommunityName, item.Score)
		authors.add(item.AuthorID, item.AuthorName, item.Score)

		if stats.LastRefreshAt == nil || entry.RefreshedAt.After(*stats.LastRefreshAt) {
			refreshedAt := entry.RefreshedAt
			stats.LastRefreshAt = &refreshedAt
		}
	}

	stats.FeedItemsCount = len(entries)
	stats.AverageScore = float64(scoreSum) / float64(len(entries))
	stats.TopCommunities = communities.top(TopGroupsLimit)
	stats.TopAuthors = authors.top(TopGroupsLimit)

	return stats
}

type groupAccumulator struct {
	id       string
	name     string
	count    int
	scoreSum int
}

// groupCounter accumulates per-group counts, remembering first-seen order
// so ties in post count rank deterministically
type groupCounter struct {
	index  map[string]int
	groups []*groupAccumulator
}

func newGroupCounter() *groupCounter {
	return &groupCounter{index: make(map[string]int)}
}

func (c *groupCounter) add(id, name string, score int) {
	i, ok := c.index[id]
	if !ok {
		i = len(c.groups)
		c.index[id] = i
		c.groups = append(c.groups, &groupAccumulator{id: id, name: name})
	}
	g := c.groups[i]
	g.count++
	g.scoreSum += score
}

func (c *groupCounter) top(limit int) []GroupStats {
	ordered := make([]*groupAccumulator, len(c.groups))
	copy(ordered, c.groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]GroupStats, 0, len(ordered))
	for _, g := range ordered {
		out = append(out, GroupStats{
			ID:           g.id,
			Name:         g.name,
			PostCount:    g.count,
			AverageScore: float64(g.scoreSum) / float64(g.count),
		})
	}
	return out
}
