package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// ListCommunities returns the ids of communities the user subscribes to,
// oldest subscription first
func (r *postgresCommunityRepo) ListCommunities(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT community_id
		FROM community_subscriptions
		WHERE user_id = $1
		ORDER BY subscribed_at ASC, community_id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close subscription rows", "error", closeErr)
		}
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return ids, nil
}
