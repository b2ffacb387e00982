package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// PromptRepositoryPG implements domain.PromptRepository.
type PromptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a new prompt repository backed by PostgreSQL.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepositoryPG {
	return &PromptRepositoryPG{pool: pool}
}

// Create inserts the prompt config for a project.
func (r *PromptRepositoryPG) Create(ctx context.Context, prompt *domain.Prompt) error {
	query := `
INSERT INTO prompts (project_id, raw, model_pref)
VALUES ($1, COALESCE($2, '{}'::jsonb), $3)
RETURNING id, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query, prompt.ProjectID, nullableBytes(prompt.Raw), prompt.ModelPref)
	return row.Scan(&prompt.ID, &prompt.CreatedAt, &prompt.UpdatedAt)
}

// GetByProjectID fetches the prompt config for a project.
func (r *PromptRepositoryPG) GetByProjectID(ctx context.Context, projectID string) (*domain.Prompt, error) {
	query := `SELECT id, project_id, raw, model_pref, created_at, updated_at FROM prompts WHERE project_id = $1`
	row := r.pool.QueryRow(ctx, query, projectID)
	var p domain.Prompt
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Raw, &p.ModelPref, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateRaw replaces the raw config blob and model preference.
func (r *PromptRepositoryPG) UpdateRaw(ctx context.Context, promptID string, raw []byte, modelPref string) error {
	query := `
UPDATE prompts
SET raw = COALESCE($2, raw),
    model_pref = $3,
    updated_at = now()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, promptID, nullableBytes(raw), modelPref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.PromptRepository = (*PromptRepositoryPG)(nil)
