package feeds

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unavailable")

type storeCall struct {
	kind  string
	id    string
	limit int
}

// fakeContentStore serves canned posts per community/author
type fakeContentStore struct {
	byCommunity map[string][]CandidatePost
	byAuthor    map[string][]CandidatePost
	failures    map[string]error // keyed by source id
	blocking    map[string]bool  // sources that wait for ctx cancellation
	calls       []storeCall
	mu          sync.Mutex
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{
		byCommunity: make(map[string][]CandidatePost),
		byAuthor:    make(map[string][]CandidatePost),
		failures:    make(map[string]error),
		blocking:    make(map[string]bool),
	}
}

func (s *fakeContentStore) QueryByCommunity(ctx context.Context, communityID string, limit int) ([]CandidatePost, error) {
	return s.query(ctx, "community", communityID, limit, s.byCommunity)
}

func (s *fakeContentStore) QueryByAuthor(ctx context.Context, authorID string, limit int) ([]CandidatePost, error) {
	return s.query(ctx, "author", authorID, limit, s.byAuthor)
}

func (s *fakeContentStore) query(ctx context.Context, kind, id string, limit int, source map[string][]CandidatePost) ([]CandidatePost, error) {
	s.mu.Lock()
	s.calls = append(s.calls, storeCall{kind: kind, id: id, limit: limit})
	failure := s.failures[id]
	blocking := s.blocking[id]
	posts := source[id]
	s.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if failure != nil {
		return nil, failure
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	out := make([]CandidatePost, len(posts))
	copy(out, posts)
	return out, nil
}

func (s *fakeContentStore) callsFor(id string) []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storeCall
	for _, c := range s.calls {
		if c.id == id {
			out = append(out, c)
		}
	}
	return out
}

func (s *fakeContentStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeSubscriptions struct {
	err         error
	communities map[string][]string
}

func (f *fakeSubscriptions) ListCommunities(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.communities[userID], nil
}

type fakeFollows struct {
	err       error
	following map[string][]string
}

func (f *fakeFollows) ListFollowing(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.following[userID], nil
}

// fakeIdentity resolves only the names it knows
type fakeIdentity struct {
	communities map[string]string
	authors     map[string]string
}

func (f *fakeIdentity) CommunityName(_ context.Context, id string) (string, bool) {
	name, ok := f.communities[id]
	return name, ok
}

func (f *fakeIdentity) AuthorName(_ context.Context, id string) (string, bool) {
	name, ok := f.authors[id]
	return name, ok
}

// memoryCache is an in-memory Cache ordered like the badger implementation
type memoryCache struct {
	clearErr error
	putErr   func(entry CacheEntry) error
	queryErr error
	entries  map[string]map[string]CacheEntry
	mu       sync.Mutex
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]map[string]CacheEntry)}
}

func (c *memoryCache) Clear(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearErr != nil {
		return c.clearErr
	}
	delete(c.entries, userID)
	return nil
}

func (c *memoryCache) Put(_ context.Context, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		if err := c.putErr(entry); err != nil {
			return err
		}
	}
	if c.entries[entry.UserID] == nil {
		c.entries[entry.UserID] = make(map[string]CacheEntry)
	}
	key := entry.Item.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + entry.Item.FeedID
	c.entries[entry.UserID][key] = entry
	return nil
}

func (c *memoryCache) Query(_ context.Context, userID string) ([]CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	keys := make([]string, 0, len(c.entries[userID]))
	for k := range c.entries[userID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]CacheEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.entries[userID][k])
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)

func post(id, community, author string, score int, age time.Duration) CandidatePost {
	return CandidatePost{
		PostID:      id,
		CommunityID: community,
		AuthorID:    author,
		Title:       "title " + id,
		Content:     "content " + id,
		CreatedAt:   testNow.Add(-age),
		Upvotes:     score,
		Score:       score,
	}
}

func postIDs(posts []CandidatePost) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostID)
	}
	return ids
}

func itemPostIDs(items []FeedItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PostID)
	}
	return ids
}

func strPtr(s string) *string {
	return &s
}
