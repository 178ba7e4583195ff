package postgres

import (
	"context"
	"database/sql"

	"Subfeed/internal/core/identity"
)

type nameDirectory struct {
	communities *postgresCommunityRepo
	users       *postgresUserRepo
}

// NewNameDirectory creates the display name lookup used by the identity resolver
func NewNameDirectory(db *sql.DB) identity.NameDirectory {
	return &nameDirectory{
		communities: &postgresCommunityRepo{db: db},
		users:       &postgresUserRepo{db: db},
	}
}

func (d *nameDirectory) CommunityName(ctx context.Context, communityID string) (string, error) {
	return d.communities.CommunityName(ctx, communityID)
}

func (d *nameDirectory) UserName(ctx context.Context, userID string) (string, error) {
	return d.users.UserName(ctx, userID)
}
