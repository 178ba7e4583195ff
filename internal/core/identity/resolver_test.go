package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDirectory struct {
	communities map[string]string
	users       map[string]string
	err         error
	calls       map[string]int
	mu          sync.Mutex
}

func newCountingDirectory() *countingDirectory {
	return &countingDirectory{
		communities: map[string]string{"c1": "golang"},
		users:       map[string]string{"u1": "alice"},
		calls:       map[string]int{},
	}
}

func (d *countingDirectory) lookup(names map[string]string, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[id]++
	if d.err != nil {
		return "", d.err
	}
	name, ok := names[id]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (d *countingDirectory) CommunityName(_ context.Context, id string) (string, error) {
	return d.lookup(d.communities, id)
}

func (d *countingDirectory) UserName(_ context.Context, id string) (string, error) {
	return d.lookup(d.users, id)
}

func (d *countingDirectory) callsFor(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

func newTestResolver(dir NameDirectory) (*CachingResolver, *time.Time) {
	r := NewCachingResolver(dir, DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	clock := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestCachingResolver_CachesHits(t *testing.T) {
	dir := newCountingDirectory()
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, ok := r.CommunityName(ctx, "c1")
		require.True(t, ok)
		assert.Equal(t, "golang", name)
	}
	assert.Equal(t, 1, dir.callsFor("c1"))

	name, ok := r.AuthorName(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
}

func TestCachingResolver_KindsAreSeparate(t *testing.T) {
	dir := newCountingDirectory()
	dir.users["c1"] = "not-a-community"
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	community, _ := r.CommunityName(ctx, "c1")
	author, _ := r.AuthorName(ctx, "c1")

	assert.Equal(t, "golang", community)
	assert.Equal(t, "not-a-community", author)
}

func TestCachingResolver_ExpiresEntries(t *testing.T) {
	dir := newCountingDirectory()
	r, clock := newTestResolver(dir)
	ctx := context.Background()

	_, _ = r.CommunityName(ctx, "c1")
	*clock = clock.Add(DefaultConfig().TTL + time.Second)
	_, _ = r.CommunityName(ctx, "c1")

	assert.Equal(t, 2, dir.callsFor("c1"))
}

func TestCachingResolver_NegativeCaching(t *testing.T) {
	dir := newCountingDirectory()
	r, clock := newTestResolver(dir)
	ctx := context.Background()

	_, ok := r.CommunityName(ctx, "missing")
	assert.False(t, ok)
	_, ok = r.CommunityName(ctx, "missing")
	assert.False(t, ok)
	assert.Equal(t, 1, dir.callsFor("missing"))

	dir.communities["missing"] = "found-later"
	*clock = clock.Add(DefaultConfig().NegativeTTL + time.Second)

	name, ok := r.CommunityName(ctx, "missing")
	assert.True(t, ok)
	assert.Equal(t, "found-later", name)
}

func TestCachingResolver_TransientErrorsNotCached(t *testing.T) {
	dir := newCountingDirectory()
	dir.err = errors.New("connection refused")
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	_, ok := r.AuthorName(ctx, "u1")
	assert.False(t, ok)

	dir.err = nil
	name, ok := r.AuthorName(ctx, "u1")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 2, dir.callsFor("u1"))
}

func TestCachingResolver_EmptyIDSkipsLookup(t *testing.T) {
	dir := newCountingDirectory()
	r, _ := newTestResolver(dir)

	_, ok := r.CommunityName(context.Background(), "")

	assert.False(t, ok)
	assert.Equal(t, 0, dir.callsFor(""))
}

func TestCachingResolver_Purge(t *testing.T) {
	dir := newCountingDirectory()
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	_, _ = r.CommunityName(ctx, "c1")
	r.Purge("c1")
	_, _ = r.CommunityName(ctx, "c1")

	assert.Equal(t, 2, dir.callsFor("c1"))
}
