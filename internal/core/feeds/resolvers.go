package feeds

import (
	"context"
	"log/slog"
	"time"
)

// SubscriptionResolver returns the communities a user belongs to.
// Directory failures degrade to an empty set so the feed can still be served.
type SubscriptionResolver struct {
	directory SubscriptionDirectory
	logger    *slog.Logger
	timeout   time.Duration
}

// NewSubscriptionResolver creates a resolver over directory with a per-call timeout
func NewSubscriptionResolver(directory SubscriptionDirectory, timeout time.Duration, logger *slog.Logger) *SubscriptionResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionResolver{
		directory: directory,
		timeout:   timeout,
		logger:    logger,
	}
}

// Resolve lists the user's community IDs
func (r *SubscriptionResolver) Resolve(ctx context.Context, userID string) []string {
	ctx, cancel := withOptionalTimeout(ctx, r.timeout)
	defer cancel()

	ids, err := r.directory.ListCommunities(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to list subscriptions, treating as none",
			"user", userID,
			"error", err)
		return nil
	}
	return uniqueIDs(ids)
}

// FollowResolver returns the authors a user follows.
// Graph failures degrade to an empty set.
type FollowResolver struct {
	graph   FollowGraph
	logger  *slog.Logger
	timeout time.Duration
}

// NewFollowResolver creates a resolver over graph with a per-call timeout
func NewFollowResolver(graph FollowGraph, timeout time.Duration, logger *slog.Logger) *FollowResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowResolver{
		graph:   graph,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve lists the author IDs the user follows
func (r *FollowResolver) Resolve(ctx context.Context, userID string) []string {
	ctx, cancel := withOptionalTimeout(ctx, r.timeout)
	defer cancel()

	ids, err := r.graph.ListFollowing(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to list followed authors, treating as none",
			"user", userID,
			"error", err)
		return nil
	}
	return uniqueIDs(ids)
}

// uniqueIDs drops empty and repeated IDs, keeping first-seen order
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
