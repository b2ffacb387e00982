package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// RenderRepositoryPG implements domain.RenderRepository.
type RenderRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRenderRepository creates a new render repository backed by PostgreSQL.
func NewRenderRepository(pool *pgxpool.Pool) *RenderRepositoryPG {
	return &RenderRepositoryPG{pool: pool}
}

// Create inserts one render row.
func (r *RenderRepositoryPG) Create(ctx context.Context, render *domain.Render) error {
	query := `
INSERT INTO renders (job_id, variant, storage_path)
VALUES ($1, $2, $3)
RETURNING id, created_at;
`
	row := r.pool.QueryRow(ctx, query, render.JobID, render.Variant, render.StoragePath)
	return row.Scan(&render.ID, &render.CreatedAt)
}

// ListByJobID returns all renders for a job ordered by variant.
func (r *RenderRepositoryPG) ListByJobID(ctx context.Context, jobID string) ([]domain.Render, error) {
	query := `
SELECT id, job_id, variant, storage_path, likes_count, views_count, created_at
FROM renders
WHERE job_id = $1
ORDER BY variant ASC;
`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var renders []domain.Render
	for rows.Next() {
		var rd domain.Render
		if err := rows.Scan(&rd.ID, &rd.JobID, &rd.Variant, &rd.StoragePath, &rd.LikesCount, &rd.ViewsCount, &rd.CreatedAt); err != nil {
			return nil, err
		}
		renders = append(renders, rd)
	}
	return renders, rows.Err()
}

// IncrementViews bumps the view counter in a single statement.
func (r *RenderRepositoryPG) IncrementViews(ctx context.Context, renderID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE renders SET views_count = views_count + 1 WHERE id = $1`, renderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementLikes adjusts the like counter by delta, clamped at zero.
func (r *RenderRepositoryPG) IncrementLikes(ctx context.Context, renderID string, delta int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE renders SET likes_count = GREATEST(likes_count + $2, 0) WHERE id = $1`, renderID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.RenderRepository = (*RenderRepositoryPG)(nil)
