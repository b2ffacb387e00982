package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// PreferencesRepositoryPG implements domain.PreferencesRepository. Settings
// are stored as a single JSONB blob per user; reads overlay the stored keys
// onto the defaults so new fields pick up sensible values without a backfill.
type PreferencesRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPreferencesRepository creates a new preferences repository backed by PostgreSQL.
func NewPreferencesRepository(pool *pgxpool.Pool) *PreferencesRepositoryPG {
	return &PreferencesRepositoryPG{pool: pool}
}

// Get returns the user's preferences, falling back to defaults when no row
// exists yet.
func (r *PreferencesRepositoryPG) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT raw FROM preferences WHERE user_id = $1`, userID).Scan(&raw)
	prefs := domain.DefaultPreferences()
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &prefs, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Put upserts the full preferences blob.
func (r *PreferencesRepositoryPG) Put(ctx context.Context, userID string, prefs *domain.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	query := `
INSERT INTO preferences (user_id, raw, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET raw = EXCLUDED.raw, updated_at = now();
`
	_, err = r.pool.Exec(ctx, query, userID, raw)
	return err
}

var _ domain.PreferencesRepository = (*PreferencesRepositoryPG)(nil)
