package feeds

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"Subfeed/internal/metrics"
)

// Over-fetch factors applied to the per-request limit
const (
	communityFetchFactor = 2
	authorFetchFactor    = 1
)

const (
	sourceKindCommunity = "community"
	sourceKindAuthor    = "author"
)

// FetcherConfig tunes candidate fan-out
type FetcherConfig struct {
	// SourceTimeout bounds each individual source query
	SourceTimeout time.Duration

	// Concurrency is the maximum number of sources queried at once
	Concurrency int

	// Dedup drops repeated posts (same PostID) contributed by several sources.
	// Off by default: a post from a subscribed community by a followed author
	// appears twice.
	Dedup bool

	// BreakerMinRequests is the number of store calls within one interval
	// before the failure ratio is considered
	BreakerMinRequests uint32

	// BreakerFailureRatio is the share of failed store calls that opens the breaker
	BreakerFailureRatio float64

	// BreakerInterval clears the breaker's counts while it is closed
	BreakerInterval time.Duration

	// BreakerOpenTimeout is how long the breaker stays open before probing again
	BreakerOpenTimeout time.Duration
}

// DefaultFetcherConfig returns the fan-out defaults
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		SourceTimeout:       2 * time.Second,
		Concurrency:         8,
		Dedup:               false,
		BreakerMinRequests:  20,
		BreakerFailureRatio: 0.6,
		BreakerInterval:     time.Minute,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// CandidateFetcher collects recent posts from every community and author source
type CandidateFetcher struct {
	store   ContentStore
	breaker *gobreaker.CircuitBreaker[[]CandidatePost]
	logger  *slog.Logger
	cfg     FetcherConfig
}

// NewCandidateFetcher creates a fetcher over store. All store calls share one
// circuit breaker so an unavailable store fails fast instead of timing out per source.
// The breaker trips on the failure ratio across all sources and users, never on
// a run of failures from a few bad sources. Half-open admits a full fan-out.
func NewCandidateFetcher(store ContentStore, cfg FetcherConfig, logger *slog.Logger) *CandidateFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultFetcherConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.BreakerMinRequests == 0 {
		cfg.BreakerMinRequests = defaults.BreakerMinRequests
	}
	if cfg.BreakerFailureRatio <= 0 || cfg.BreakerFailureRatio > 1 {
		cfg.BreakerFailureRatio = defaults.BreakerFailureRatio
	}

	f := &CandidateFetcher{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	settings := gobreaker.Settings{
		Name:        "content-store",
		MaxRequests: uint32(cfg.Concurrency),
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("content store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			metrics.RecordCircuitBreakerState(name, int(to))
		},
		// A caller hanging up says nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	f.breaker = gobreaker.NewCircuitBreaker[[]CandidatePost](settings)

	return f
}

// Available reports whether the content store is accepting calls.
// It is false only while the breaker is open.
func (f *CandidateFetcher) Available() bool {
	return f.breaker.State() != gobreaker.StateOpen
}

type candidateSource struct {
	query func(ctx context.Context) ([]CandidatePost, error)
	kind  string
	id    string
}

// Fetch queries every source concurrently and concatenates the results in
// source order (communities first, then authors).
//
// A failing or timed-out source contributes no candidates and does not
// cancel its siblings. Fetch fails only when given no sources (ErrNoSources)
// or when ctx itself is cancelled, in which case partial results are discarded.
func (f *CandidateFetcher) Fetch(ctx context.Context, communityIDs, authorIDs []string, perRequestLimit int) ([]CandidatePost, error) {
	sources := f.buildSources(communityIDs, authorIDs, perRequestLimit)
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([][]CandidatePost, len(sources))

	var g errgroup.Group
	g.SetLimit(f.cfg.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = f.fetchSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return f.merge(results), nil
}

func (f *CandidateFetcher) buildSources(communityIDs, authorIDs []string, perRequestLimit int) []candidateSource {
	sources := make([]candidateSource, 0, len(communityIDs)+len(authorIDs))

	for _, id := range communityIDs {
		sources = append(sources, candidateSource{
			kind: sourceKindCommunity,
			id:   id,
			query: func(ctx context.Context) ([]CandidatePost, error) {
				return f.store.QueryByCommunity(ctx, id, perRequestLimit*communityFetchFactor)
			},
		})
	}

	for _, id := range authorIDs {
		sources = append(sources, candidateSource{
			kind: sourceKindAuthor,
			id:   id,
			query: func(ctx context.Context) ([]CandidatePost, error) {
				return f.store.QueryByAuthor(ctx, id, perRequestLimit*authorFetchFactor)
			},
		})
	}

	return sources
}

func (f *CandidateFetcher) fetchSource(ctx context.Context, src candidateSource) []CandidatePost {
	if ctx.Err() != nil {
		return nil
	}

	if f.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.SourceTimeout)
		defer cancel()
	}

	posts, err := f.breaker.Execute(func() ([]CandidatePost, error) {
		return src.query(ctx)
	})
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = metrics.ResultBreakerOpen
		}
		metrics.RecordSourceFetch(src.kind, result)

		f.logger.Warn("candidate source failed, skipping",
			"kind", src.kind,
			"source", src.id,
			"error", err)
		return nil
	}

	metrics.RecordSourceFetch(src.kind, metrics.ResultOK)
	return posts
}

func (f *CandidateFetcher) merge(results [][]CandidatePost) []CandidatePost {
	total := 0
	for _, r := range results {
		total += len(r)
	}

	merged := make([]CandidatePost, 0, total)
	var seen map[string]struct{}
	if f.cfg.Dedup {
		seen = make(map[string]struct{}, total)
	}

	for _, r := range results {
		for _, post := range r {
			if seen != nil {
				if _, dup := seen[post.PostID]; dup {
					continue
				}
				seen[post.PostID] = struct{}{}
			}
			merged = append(merged, post)
		}
	}

	return merged
}
