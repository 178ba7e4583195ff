package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	"golang.org/x/sync/errgroup"
)

const previewEllipsis = "…"

// nameLookupConcurrency bounds parallel display name lookups per Materialize call
const nameLookupConcurrency = 16

// Materializer turns ranked candidate posts into display feed items
type Materializer struct {
	identity       IdentityResolver
	resolveTimeout time.Duration
}

// NewMaterializer creates a materializer. Each name lookup is bounded by
// resolveTimeout; a zero timeout leaves lookups bounded only by the caller's context.
func NewMaterializer(identity IdentityResolver, resolveTimeout time.Duration) *Materializer {
	return &Materializer{
		identity:       identity,
		resolveTimeout: resolveTimeout,
	}
}

// Materialize builds one FeedItem per post, in order.
// Name lookups never fail the call: a miss is replaced by a placeholder.
// Each distinct community and author is looked up once, concurrently.
func (m *Materializer) Materialize(ctx context.Context, posts []CandidatePost) []FeedItem {
	names := m.resolveNames(ctx, posts)

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, materializeOne(post, names))
	}
	return items
}

type displayNames struct {
	communities map[string]string
	authors     map[string]string
}

func (m *Materializer) resolveNames(ctx context.Context, posts []CandidatePost) displayNames {
	communityIDs := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seenCommunities := make(map[string]struct{}, len(posts))
	seenAuthors := make(map[string]struct{}, len(posts))
	for _, post := range posts {
		if _, ok := seenCommunities[post.CommunityID]; !ok {
			seenCommunities[post.CommunityID] = struct{}{}
			communityIDs = append(communityIDs, post.CommunityID)
		}
		if _, ok := seenAuthors[post.AuthorID]; !ok {
			seenAuthors[post.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}

	communityNames := make([]string, len(communityIDs))
	authorNames := make([]string, len(authorIDs))

	var g errgroup.Group
	g.SetLimit(nameLookupConcurrency)
	for i, id := range communityIDs {
		g.Go(func() error {
			communityNames[i] = m.communityName(ctx, id)
			return nil
		})
	}
	for i, id := range authorIDs {
		g.Go(func() error {
			authorNames[i] = m.authorName(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	names := displayNames{
		communities: make(map[string]string, len(communityIDs)),
		authors:     make(map[string]string, len(authorIDs)),
	}
	for i, id := range communityIDs {
		names.communities[id] = communityNames[i]
	}
	for i, id := range authorIDs {
		names.authors[id] = authorNames[i]
	}
	return names
}

func materializeOne(post CandidatePost, names displayNames) FeedItem {
	return FeedItem{
		FeedID:         FeedID(post.AuthorID, post.CreatedAt, post.PostID),
		PostID:         post.PostID,
		CommunityID:    post.CommunityID,
		AuthorID:       post.AuthorID,
		CommunityName:  names.communities[post.CommunityID],
		AuthorName:     names.authors[post.AuthorID],
		Title:          post.Title,
		ContentPreview: TruncatePreview(post.Content, ContentPreviewLength),
		ImageURL:       post.ImageURL,
		Tags:           post.Tags,
		Upvotes:        post.Upvotes,
		Downvotes:      post.Downvotes,
		Score:          post.Score,
		CommentCount:   post.CommentCount,
		NSFW:           post.NSFW,
		Spoiler:        post.Spoiler,
		Pinned:         post.Pinned,
		CreatedAt:      post.CreatedAt,
	}
}

func (m *Materializer) communityName(ctx context.Context, communityID string) string {
	ctx, cancel := withOptionalTimeout(ctx, m.resolveTimeout)
	defer cancel()

	if name, ok := m.identity.CommunityName(ctx, communityID); ok {
		return name
	}
	return CommunityPlaceholder(communityID)
}

func (m *Materializer) authorName(ctx context.Context, authorID string) string {
	ctx, cancel := withOptionalTimeout(ctx, m.resolveTimeout)
	defer cancel()

	if name, ok := m.identity.AuthorName(ctx, authorID); ok {
		return name
	}
	return AuthorPlaceholder(authorID)
}

// FeedID derives the feed item key from author, creation time and post.
// Distinct posts sharing all three inputs collide; this is accepted.
func FeedID(authorID string, createdAt time.Time, postID string) string {
	return fmt.Sprintf("%s_%s_%s", authorID, createdAt.UTC().Format(time.RFC3339Nano), postID)
}

// CommunityPlaceholder is the display name used when a community name cannot be resolved
func CommunityPlaceholder(communityID string) string {
	return "community-" + communityID
}

// AuthorPlaceholder is the display name used when an author name cannot be resolved
func AuthorPlaceholder(authorID string) string {
	return "user-" + authorID
}

// TruncatePreview cuts content to at most maxGraphemes grapheme clusters,
// appending an ellipsis when anything was cut
func TruncatePreview(content string, maxGraphemes int) string {
	if uniseg.GraphemeClusterCount(content) <= maxGraphemes {
		return content
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(content)
	for n := 0; n < maxGraphemes && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString(previewEllipsis)
	return b.String()
}
