package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// ProjectRepositoryPG implements domain.ProjectRepository.
type ProjectRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new project repository backed by PostgreSQL.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{pool: pool}
}

const projectColumns = `id, user_id, mode, platform, width, height, status, created_at, updated_at`

// Create inserts a new project.
func (r *ProjectRepositoryPG) Create(ctx context.Context, project *domain.Project) error {
	query := `
INSERT INTO projects (user_id, mode, platform, width, height, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		project.UserID,
		project.Mode,
		project.Platform,
		project.Width,
		project.Height,
		project.Status,
	)
	return row.Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

// GetByID fetches a project regardless of owner. The pipeline uses this;
// handlers go through GetOwned.
func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// GetOwned fetches a project only when userID owns it.
func (r *ProjectRepositoryPG) GetOwned(ctx context.Context, id, userID string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	return scanProject(row)
}

// Update persists mutable project fields.
func (r *ProjectRepositoryPG) Update(ctx context.Context, project *domain.Project) error {
	query := `
UPDATE projects
SET mode = $2,
    platform = $3,
    width = $4,
    height = $5,
    status = $6,
    updated_at = now()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, project.ID, project.Mode, project.Platform, project.Width, project.Height, project.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Mode,
		&p.Platform,
		&p.Width,
		&p.Height,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ domain.ProjectRepository = (*ProjectRepositoryPG)(nil)
