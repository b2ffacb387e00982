package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// AuditRepositoryPG implements domain.AuditRepository. Rows are append-only;
// there is deliberately no update or delete here.
type AuditRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository backed by PostgreSQL.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepositoryPG {
	return &AuditRepositoryPG{pool: pool}
}

// Append inserts one ledger entry.
func (r *AuditRepositoryPG) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
INSERT INTO audit (user_id, action, delta_credits, meta)
VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb))
RETURNING id, created_at;
`
	row := r.pool.QueryRow(ctx, query, entry.UserID, entry.Action, entry.DeltaCredits, nullableBytes(entry.Meta))
	return row.Scan(&entry.ID, &entry.CreatedAt)
}

// ListByUser returns a user's most recent ledger entries.
func (r *AuditRepositoryPG) ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
SELECT id, user_id, action, delta_credits, meta, created_at
FROM audit
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.DeltaCredits, &e.Meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumDeltas returns the signed sum of all deltas for a user.
func (r *AuditRepositoryPG) SumDeltas(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(delta_credits), 0) FROM audit WHERE user_id = $1`, userID).Scan(&sum)
	return sum, err
}

// CountByJobAction counts ledger rows tagged with a job id and action.
func (r *AuditRepositoryPG) CountByJobAction(ctx context.Context, jobID, action string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit WHERE meta->>'job_id' = $1 AND action = $2`, jobID, action).Scan(&count)
	return count, err
}

// ActiveUserIDs returns users with ledger rows newer than sinceHours.
func (r *AuditRepositoryPG) ActiveUserIDs(ctx context.Context, sinceHours int) ([]string, error) {
	query := `
SELECT DISTINCT user_id
FROM audit
WHERE created_at > now() - make_interval(hours => $1);
`
	rows, err := r.pool.Query(ctx, query, sinceHours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ domain.AuditRepository = (*AuditRepositoryPG)(nil)
