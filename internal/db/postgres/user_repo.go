package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"Subfeed/internal/core/feeds"
	"Subfeed/internal/core/identity"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates the PostgreSQL follow graph
func NewUserRepository(db *sql.DB) feeds.FollowGraph {
	return &postgresUserRepo{db: db}
}

// UserName returns the user's display name
func (r *postgresUserRepo) UserName(ctx context.Context, userID string) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&username)
	if err == sql.ErrNoRows {
		return "", identity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get username: %w", err)
	}
	return username, nil
}

// ListFollowing returns the ids of users the user follows, oldest follow first
func (r *postgresUserRepo) ListFollowing(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT followee_id
		FROM user_follows
		WHERE follower_id = $1
		ORDER BY followed_at ASC, followee_id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close follow rows", "error", closeErr)
		}
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}

	return ids, nil
}

// ListFeedUsers returns every user with at least one subscription or follow
func ListFeedUsers(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT user_id FROM community_subscriptions
		UNION
		SELECT follower_id FROM user_follows
		ORDER BY 1`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close feed user rows", "error", closeErr)
		}
	}()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan feed user: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed users: %w", err)
	}

	return users, nil
}
