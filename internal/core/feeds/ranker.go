package feeds

import (
	"sort"
	"time"
)

// Hot ranking age thresholds and multipliers
const (
	hotFreshAge         = time.Hour
	hotRecentAge        = 24 * time.Hour
	hotFreshMultiplier  = 2.0
	hotRecentMultiplier = 1.5
	hotStaleMultiplier  = 1.0

	// trendingCommentWeight is the score boost per comment
	trendingCommentWeight = 0.1
)

// HotScore weights a post's score by how recently it was created
func HotScore(post CandidatePost, now time.Time) float64 {
	age := now.Sub(post.CreatedAt)

	multiplier := hotStaleMultiplier
	switch {
	case age < hotFreshAge:
		multiplier = hotFreshMultiplier
	case age < hotRecentAge:
		multiplier = hotRecentMultiplier
	}

	return float64(post.Score) * multiplier
}

// TrendingScore boosts a post's score by its comment activity
func TrendingScore(post CandidatePost) float64 {
	return float64(post.Score) + float64(post.CommentCount)*trendingCommentWeight
}

// Rank returns a copy of posts ordered by the given algorithm.
// Sorting is stable: ties keep their input (fetch) order.
// An unknown sort returns the posts in input order; requests are validated
// before they reach the ranker.
func Rank(posts []CandidatePost, sortType SortType, now time.Time) []CandidatePost {
	ranked := make([]CandidatePost, len(posts))
	copy(ranked, posts)

	switch sortType {
	case SortNew:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		})
	case SortTop:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score > ranked[j].Score
		})
	case SortHot:
		keys := scoreKeys(ranked, func(p CandidatePost) float64 { return HotScore(p, now) })
		sortByKeys(ranked, keys)
	case SortTrending:
		keys := scoreKeys(ranked, TrendingScore)
		sortByKeys(ranked, keys)
	}

	return ranked
}

// scoreKeys computes each post's sort key once, before any element moves
func scoreKeys(posts []CandidatePost, score func(CandidatePost) float64) []float64 {
	keys := make([]float64, len(posts))
	for i := range posts {
		keys[i] = score(posts[i])
	}
	return keys
}

// sortByKeys stably sorts posts by keys descending, moving keys alongside
func sortByKeys(posts []CandidatePost, keys []float64) {
	sort.Stable(&keyedPosts{posts: posts, keys: keys})
}

type keyedPosts struct {
	posts []CandidatePost
	keys  []float64
}

func (k *keyedPosts) Len() int           { return len(k.posts) }
func (k *keyedPosts) Less(i, j int) bool { return k.keys[i] > k.keys[j] }
func (k *keyedPosts) Swap(i, j int) {
	k.posts[i], k.posts[j] = k.posts[j], k.posts[i]
	k.keys[i], k.keys[j] = k.keys[j], k.keys[i]
}
