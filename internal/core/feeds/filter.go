package feeds

// Filter reports whether a post should stay in the feed
type Filter func(post CandidatePost) bool

// NSFWFilter drops NSFW posts unless include is set
func NSFWFilter(include bool) Filter {
	return func(post CandidatePost) bool {
		return include || !post.NSFW
	}
}

// SpoilerFilter drops spoiler posts unless include is set
func SpoilerFilter(include bool) Filter {
	return func(post CandidatePost) bool {
		return include || !post.Spoiler
	}
}

// CommunityFilter keeps only posts from communityID. A nil id keeps everything.
func CommunityFilter(communityID *string) Filter {
	return func(post CandidatePost) bool {
		return communityID == nil || post.CommunityID == *communityID
	}
}

// AuthorFilter keeps only posts by authorID. A nil id keeps everything.
func AuthorFilter(authorID *string) Filter {
	return func(post CandidatePost) bool {
		return authorID == nil || post.AuthorID == *authorID
	}
}

// FilterPipeline is an AND of filters
type FilterPipeline []Filter

// NewFilterPipeline builds the content policy pipeline for a request
func NewFilterPipeline(req FeedRequest) FilterPipeline {
	return FilterPipeline{
		NSFWFilter(req.IncludeNSFW),
		SpoilerFilter(req.IncludeSpoilers),
		CommunityFilter(req.CommunityID),
		AuthorFilter(req.AuthorID),
	}
}

// Apply returns the posts that pass every filter, preserving input order.
// The input slice is not modified.
func (p FilterPipeline) Apply(posts []CandidatePost) []CandidatePost {
	kept := make([]CandidatePost, 0, len(posts))
	for _, post := range posts {
		if p.keep(post) {
			kept = append(kept, post)
		}
	}
	return kept
}

func (p FilterPipeline) keep(post CandidatePost) bool {
	for _, f := range p {
		if !f(post) {
			return false
		}
	}
	return true
}

// ApplyFilters runs the request's filter pipeline over posts
func ApplyFilters(posts []CandidatePost, req FeedRequest) []CandidatePost {
	return NewFilterPipeline(req).Apply(posts)
}
