package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// SocialRepositoryPG implements domain.SocialRepository. Follower counters on
// users are denormalized and updated in the same transaction as the follows
// row so they never drift.
type SocialRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSocialRepository creates a new social repository backed by PostgreSQL.
func NewSocialRepository(pool *pgxpool.Pool) *SocialRepositoryPG {
	return &SocialRepositoryPG{pool: pool}
}

// Follow creates the edge and bumps both counters. Following an already
// followed user returns ErrConflict; following yourself is rejected by the
// table check constraint.
func (r *SocialRepositoryPG) Follow(ctx context.Context, followerID, followeeID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
INSERT INTO follows (follower_id, followee_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING;
`, followerID, followeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET following_count = following_count + 1 WHERE id = $1`, followerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET followers_count = followers_count + 1 WHERE id = $1`, followeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Unfollow removes the edge and decrements both counters. Removing a
// non-existent edge returns ErrNotFound.
func (r *SocialRepositoryPG) Unfollow(ctx context.Context, followerID, followeeID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET following_count = GREATEST(following_count - 1, 0) WHERE id = $1`, followerID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET followers_count = GREATEST(followers_count - 1, 0) WHERE id = $1`, followeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IsFollowing reports whether the edge exists.
func (r *SocialRepositoryPG) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&exists)
	return exists, err
}

// PublicProfile returns the public view of a user by username, including a
// count of successfully rendered thumbnails.
func (r *SocialRepositoryPG) PublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	query := `
SELECT u.id, u.username, u.full_name, u.avatar_path, u.bio, u.is_verified,
       u.followers_count, u.following_count,
       (SELECT COUNT(*)
        FROM renders r
        JOIN jobs j ON j.id = r.job_id
        JOIN projects p ON p.id = j.project_id
        WHERE p.user_id = u.id) AS thumbnails_count
FROM users u
WHERE u.username = $1;
`
	row := r.pool.QueryRow(ctx, query, username)
	var p domain.PublicProfile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarPath, &p.Bio, &p.IsVerified,
		&p.FollowersCount, &p.FollowingCount, &p.ThumbnailsCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ domain.SocialRepository = (*SocialRepositoryPG)(nil)
