package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// NameDirectory looks up display names in the backing store.
// Implementations return ErrNotFound for unknown ids.
type NameDirectory interface {
	CommunityName(ctx context.Context, communityID string) (string, error)
	UserName(ctx context.Context, userID string) (string, error)
}

// Config sizes the name cache
type Config struct {
	// Size is the maximum number of cached names per kind
	Size int

	// TTL is how long a resolved name is reused
	TTL time.Duration

	// NegativeTTL is how long an unknown id is remembered
	NegativeTTL time.Duration
}

// DefaultConfig returns the resolver cache defaults
func DefaultConfig() Config {
	return Config{
		Size:        10000,
		TTL:         10 * time.Minute,
		NegativeTTL: time.Minute,
	}
}

type cachedName struct {
	expiresAt time.Time
	name      string
	found     bool
}

// CachingResolver resolves community and author display names through a
// bounded LRU in front of a NameDirectory. Lookup failures are reported as
// "not found" so callers fall back to placeholders.
type CachingResolver struct {
	directory   NameDirectory
	communities *lru.Cache[string, cachedName]
	users       *lru.Cache[string, cachedName]
	logger      *slog.Logger
	now         func() time.Time
	ttl         time.Duration
	negativeTTL time.Duration
}

// NewCachingResolver creates a caching name resolver
func NewCachingResolver(directory NameDirectory, cfg Config, logger *slog.Logger) *CachingResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}

	return &CachingResolver{
		directory:   directory,
		communities: newNameCache(cfg.Size, logger),
		users:       newNameCache(cfg.Size, logger),
		logger:      logger,
		now:         time.Now,
		ttl:         cfg.TTL,
		negativeTTL: cfg.NegativeTTL,
	}
}

func newNameCache(size int, logger *slog.Logger) *lru.Cache[string, cachedName] {
	cache, err := lru.New[string, cachedName](size)
	if err != nil {
		// Only fails for a non-positive size
		logger.Error("failed to create name cache, using minimal cache", "size", size, "error", err)
		cache, _ = lru.New[string, cachedName](1)
	}
	return cache
}

// CommunityName returns the community's display name
func (r *CachingResolver) CommunityName(ctx context.Context, communityID string) (string, bool) {
	return r.resolve(ctx, r.communities, "community", communityID, r.directory.CommunityName)
}

// AuthorName returns the author's display name
func (r *CachingResolver) AuthorName(ctx context.Context, authorID string) (string, bool) {
	return r.resolve(ctx, r.users, "author", authorID, r.directory.UserName)
}

// Purge drops any cached names for the id
func (r *CachingResolver) Purge(id string) {
	r.communities.Remove(id)
	r.users.Remove(id)
}

func (r *CachingResolver) resolve(
	ctx context.Context,
	cache *lru.Cache[string, cachedName],
	kind, id string,
	lookup func(context.Context, string) (string, error),
) (string, bool) {
	if id == "" {
		return "", false
	}

	now := r.now()
	if cached, ok := cache.Get(id); ok {
		if now.Before(cached.expiresAt) {
			return cached.name, cached.found
		}
		cache.Remove(id)
	}

	name, err := lookup(ctx, id)
	switch {
	case err == nil && name != "":
		cache.Add(id, cachedName{name: name, found: true, expiresAt: now.Add(r.ttl)})
		return name, true
	case err == nil, errors.Is(err, ErrNotFound):
		cache.Add(id, cachedName{expiresAt: now.Add(r.negativeTTL)})
		return "", false
	default:
		// Transient failures are not cached
		r.logger.Warn("name lookup failed",
			"kind", kind,
			"id", id,
			"error", err)
		return "", false
	}
}
