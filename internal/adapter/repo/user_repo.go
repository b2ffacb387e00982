// Package repo contains the PostgreSQL implementations of the domain
// repositories, backed by a pgx connection pool.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, email, username, full_name, password_hash, bio, avatar_path, credits, plan, is_verified, country, followers_count, following_count, created_at, updated_at`

// Create inserts a new user and fills in the generated id and timestamps.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	query := `
INSERT INTO users (email, username, full_name, password_hash, credits, plan, country)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.FullName,
		user.PasswordHash,
		user.Credits,
		user.Plan,
		user.Country,
	)
	return row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByUsername fetches a user by username.
func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// UpdateProfile updates the mutable profile fields.
func (r *UserRepositoryPG) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
UPDATE users
SET full_name = $2,
    bio = $3,
    avatar_path = $4,
    country = $5,
    updated_at = now()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.FullName, user.Bio, user.AvatarPath, user.Country)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetVerified marks the account's email as confirmed.
func (r *UserRepositoryPG) SetVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a user; dependent rows cascade.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitCredits performs the balance check and deduction as one conditional
// update. Concurrent debits for the same user serialize on the row; the
// WHERE clause means the balance can never go negative.
func (r *UserRepositoryPG) DebitCredits(ctx context.Context, userID string, amount int) error {
	query := `
UPDATE users
SET credits = credits - $2,
    updated_at = now()
WHERE id = $1
  AND credits >= $2;
`
	tag, err := r.pool.Exec(ctx, query, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the user is gone or the balance is short; disambiguate so
		// the pipeline can report the right failure.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientCredits
	}
	return nil
}

// CreditCredits adds amount back to the balance unconditionally.
func (r *UserRepositoryPG) CreditCredits(ctx context.Context, userID string, amount int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET credits = credits + $2, updated_at = now() WHERE id = $1`, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Credits returns the current balance.
func (r *UserRepositoryPG) Credits(ctx context.Context, userID string) (int, error) {
	var credits int
	if err := r.pool.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return credits, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&u.PasswordHash,
		&u.Bio,
		&u.AvatarPath,
		&u.Credits,
		&u.Plan,
		&u.IsVerified,
		&u.Country,
		&u.FollowersCount,
		&u.FollowingCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
