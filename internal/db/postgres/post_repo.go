package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"Subfeed/internal/core/feeds"
)

const postColumns = `
	p.id, p.community_id, p.author_id, p.title, p.content, p.tags, p.image_url,
	p.upvotes, p.downvotes, p.score, p.comment_count,
	p.is_nsfw, p.is_spoiler, p.is_pinned, p.created_at`

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates the PostgreSQL content store
func NewPostRepository(db *sql.DB) feeds.ContentStore {
	return &postgresPostRepo{db: db}
}

// QueryByCommunity returns up to limit of the community's newest posts
func (r *postgresPostRepo) QueryByCommunity(ctx context.Context, communityID string, limit int) ([]feeds.CandidatePost, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.community_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	return r.queryPosts(ctx, query, communityID, limit)
}

// QueryByAuthor returns up to limit of the author's newest posts
func (r *postgresPostRepo) QueryByAuthor(ctx context.Context, authorID string, limit int) ([]feeds.CandidatePost, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		WHERE p.author_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	return r.queryPosts(ctx, query, authorID, limit)
}

func (r *postgresPostRepo) queryPosts(ctx context.Context, query, id string, limit int) ([]feeds.CandidatePost, error) {
	if limit <= 0 {
		return []feeds.CandidatePost{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close post rows", "error", closeErr)
		}
	}()

	posts := []feeds.CandidatePost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

func scanPost(rows *sql.Rows) (feeds.CandidatePost, error) {
	var post feeds.CandidatePost
	var tags pq.StringArray
	var imageURL sql.NullString

	err := rows.Scan(
		&post.PostID, &post.CommunityID, &post.AuthorID, &post.Title, &post.Content, &tags, &imageURL,
		&post.Upvotes, &post.Downvotes, &post.Score, &post.CommentCount,
		&post.NSFW, &post.Spoiler, &post.Pinned, &post.CreatedAt,
	)
	if err != nil {
		return feeds.CandidatePost{}, err
	}

	post.Tags = []string(tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if imageURL.Valid {
		post.ImageURL = &imageURL.String
	}
	post.CreatedAt = post.CreatedAt.UTC()

	return post, nil
}
