package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// AssetRepositoryPG implements domain.AssetRepository.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new asset repository backed by PostgreSQL.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

// Create inserts an uploaded reference asset.
func (r *AssetRepositoryPG) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
INSERT INTO assets (user_id, path, mime, bytes)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;
`
	row := r.pool.QueryRow(ctx, query, asset.UserID, asset.Path, asset.MIME, asset.Bytes)
	return row.Scan(&asset.ID, &asset.CreatedAt)
}

// Get fetches an asset by id regardless of owner; the pipeline resolves
// reference lists this way.
func (r *AssetRepositoryPG) Get(ctx context.Context, id string) (*domain.Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, user_id, path, mime, bytes, created_at FROM assets WHERE id = $1`, id)
	return scanAsset(row)
}

// GetOwned fetches an asset only when userID owns it.
func (r *AssetRepositoryPG) GetOwned(ctx context.Context, id, userID string) (*domain.Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, user_id, path, mime, bytes, created_at FROM assets WHERE id = $1 AND user_id = $2`, id, userID)
	return scanAsset(row)
}

// ListByUser returns a user's uploads, newest first.
func (r *AssetRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, path, mime, bytes, created_at FROM assets WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Path, &a.MIME, &a.Bytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	if err := row.Scan(&a.ID, &a.UserID, &a.Path, &a.MIME, &a.Bytes, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

var _ domain.AssetRepository = (*AssetRepositoryPG)(nil)
