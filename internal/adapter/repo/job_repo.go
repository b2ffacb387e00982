package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

const jobColumns = `id, project_id, model, quality, status, cost_credits, variants, provider_meta, error_message, created_at, started_at, finished_at`

// Create inserts a new job record in queued status.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (project_id, model, quality, status, cost_credits, variants, provider_meta)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, '{}'::jsonb))
RETURNING id, created_at;
`
	row := r.pool.QueryRow(ctx, query,
		job.ProjectID,
		job.Model,
		job.Quality,
		job.Status,
		job.CostCredits,
		job.Variants,
		nullableBytes(job.ProviderMeta),
	)
	return row.Scan(&job.ID, &job.CreatedAt)
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID)
	return scanJob(row)
}

// ClaimQueued flips the oldest queued job to running and returns it. The
// status flip and the read are one statement, so a job can only ever be
// claimed once regardless of how many workers poll; SKIP LOCKED keeps
// concurrent claimers from blocking on each other.
func (r *JobRepositoryPG) ClaimQueued(ctx context.Context) (*domain.Job, error) {
	query := `
WITH next_job AS (
    SELECT id
    FROM jobs
    WHERE status = 'queued'
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE jobs
SET status = 'running', started_at = now()
WHERE id IN (SELECT id FROM next_job)
RETURNING ` + jobColumns + `;
`
	return scanJob(r.pool.QueryRow(ctx, query))
}

// MarkSucceeded finalizes a running job. The status guard keeps terminal
// states final: a second writer hits zero rows and gets ErrInvalidTransition.
func (r *JobRepositoryPG) MarkSucceeded(ctx context.Context, jobID string, costCredits int) error {
	query := `
UPDATE jobs
SET status = 'succeeded',
    cost_credits = $2,
    finished_at = now()
WHERE id = $1
  AND status = 'running';
`
	tag, err := r.pool.Exec(ctx, query, jobID, costCredits)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// MarkFailed finalizes a running job as failed with the error message.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	query := `
UPDATE jobs
SET status = 'failed',
    error_message = $2,
    finished_at = now()
WHERE id = $1
  AND status = 'running';
`
	tag, err := r.pool.Exec(ctx, query, jobID, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// FailStuckRunning reaps jobs that have sat in running longer than
// maxAgeSeconds and returns them so the caller can compensate credits.
func (r *JobRepositoryPG) FailStuckRunning(ctx context.Context, maxAgeSeconds int) ([]domain.Job, error) {
	query := `
UPDATE jobs
SET status = 'failed',
    error_message = 'reaped: exceeded running deadline',
    finished_at = now()
WHERE status = 'running'
  AND started_at < now() - make_interval(secs => $1)
RETURNING ` + jobColumns + `;
`
	rows, err := r.pool.Query(ctx, query, maxAgeSeconds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListByProject returns all jobs for a project, newest first.
func (r *JobRepositoryPG) ListByProject(ctx context.Context, projectID string) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func collectJobs(rows pgx.Rows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.ProjectID,
		&job.Model,
		&job.Quality,
		&job.Status,
		&job.CostCredits,
		&job.Variants,
		&job.ProviderMeta,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.StartedAt,
		&job.FinishedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
