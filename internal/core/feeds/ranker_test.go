package feeds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHotScore_AgeMultipliers(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		score    int
		expected float64
	}{
		{name: "fresh post doubles", age: 10 * time.Minute, score: 5, expected: 10},
		{name: "exactly one hour is recent", age: time.Hour, score: 10, expected: 15},
		{name: "recent post gets 1.5x", age: 70 * time.Minute, score: 10, expected: 15},
		{name: "just under a day is recent", age: 24*time.Hour - time.Second, score: 4, expected: 6},
		{name: "a day old is stale", age: 24 * time.Hour, score: 4, expected: 4},
		{name: "negative score keeps sign", age: 5 * time.Minute, score: -3, expected: -6},
		{name: "future timestamp counts as fresh", age: -time.Hour, score: 2, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := post("p", "c", "a", tt.score, tt.age)
			assert.InDelta(t, tt.expected, HotScore(p, testNow), 1e-9)
		})
	}
}

func TestRank_HotFixture(t *testing.T) {
	a := post("A", "c1", "u1", 5, 10*time.Minute)
	b := post("B", "c1", "u2", 10, 70*time.Minute)

	ranked := Rank([]CandidatePost{a, b}, SortHot, testNow)

	assert.Equal(t, []string{"B", "A"}, postIDs(ranked))
}

func TestRank_New(t *testing.T) {
	posts := []CandidatePost{
		post("old", "c", "a", 100, 48*time.Hour),
		post("newest", "c", "a", 1, time.Minute),
		post("middle", "c", "a", 50, 3*time.Hour),
	}

	ranked := Rank(posts, SortNew, testNow)

	assert.Equal(t, []string{"newest", "middle", "old"}, postIDs(ranked))
	for i := 0; i+1 < len(ranked); i++ {
		assert.False(t, ranked[i].CreatedAt.Before(ranked[i+1].CreatedAt))
	}
}

func TestRank_Top(t *testing.T) {
	posts := []CandidatePost{
		post("low", "c", "a", 1, time.Minute),
		post("high", "c", "a", 42, 72*time.Hour),
		post("mid", "c", "a", 7, time.Hour),
	}

	ranked := Rank(posts, SortTop, testNow)

	assert.Equal(t, []string{"high", "mid", "low"}, postIDs(ranked))
}

func TestRank_Trending(t *testing.T) {
	quiet := post("quiet", "c", "a", 10, time.Hour)
	busy := post("busy", "c", "a", 9, time.Hour)
	busy.CommentCount = 20 // 9 + 2.0 = 11

	ranked := Rank([]CandidatePost{quiet, busy}, SortTrending, testNow)

	assert.Equal(t, []string{"busy", "quiet"}, postIDs(ranked))
	assert.InDelta(t, 11.0, TrendingScore(busy), 1e-9)
}

func TestRank_TiesKeepFetchOrder(t *testing.T) {
	posts := []CandidatePost{
		post("first", "c", "a", 3, 2*time.Hour),
		post("second", "c", "a", 3, 2*time.Hour),
		post("third", "c", "a", 3, 2*time.Hour),
	}

	for _, sortType := range []SortType{SortNew, SortTop, SortHot, SortTrending} {
		t.Run(string(sortType), func(t *testing.T) {
			ranked := Rank(posts, sortType, testNow)
			assert.Equal(t, []string{"first", "second", "third"}, postIDs(ranked))
		})
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	posts := []CandidatePost{
		post("a", "c", "a", 1, time.Hour),
		post("b", "c", "a", 2, time.Hour),
	}

	_ = Rank(posts, SortTop, testNow)

	assert.Equal(t, []string{"a", "b"}, postIDs(posts))
}

func TestRank_UnknownSortKeepsOrder(t *testing.T) {
	posts := []CandidatePost{
		post("a", "c", "a", 1, time.Hour),
		post("b", "c", "a", 2, time.Minute),
	}

	ranked := Rank(posts, SortType("controversial"), testNow)

	assert.Equal(t, []string{"a", "b"}, postIDs(ranked))
}
