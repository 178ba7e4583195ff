package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Subfeed/internal/core/feeds"
	"Subfeed/internal/core/identity"
)

type postgresCommunityRepo struct {
	db *sql.DB
}

// NewCommunityRepository creates the PostgreSQL subscription directory
func NewCommunityRepository(db *sql.DB) feeds.SubscriptionDirectory {
	return &postgresCommunityRepo{db: db}
}

// CommunityName returns the community's display name
func (r *postgresCommunityRepo) CommunityName(ctx context.Context, communityID string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM communities WHERE id = $1`, communityID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", identity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get community name: %w", err)
	}
	return name, nil
}
