package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// SupportRepositoryPG implements domain.SupportRepository.
type SupportRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSupportRepository creates a new support repository backed by PostgreSQL.
func NewSupportRepository(pool *pgxpool.Pool) *SupportRepositoryPG {
	return &SupportRepositoryPG{pool: pool}
}

// Create inserts a ticket and fills in generated fields.
func (r *SupportRepositoryPG) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	query := `
INSERT INTO support_tickets (user_id, subject, category, message, priority, contact_email)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, status, created_at, updated_at;
`
	return r.pool.QueryRow(ctx, query,
		ticket.UserID, ticket.Subject, ticket.Category, ticket.Message, ticket.Priority, ticket.ContactEmail,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// ListByUser returns the user's tickets, newest first.
func (r *SupportRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	query := `
SELECT id, user_id, subject, category, message, priority, status, contact_email, created_at, updated_at
FROM support_tickets
WHERE user_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.SupportTicket
	for rows.Next() {
		var t domain.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Category, &t.Message, &t.Priority, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

var _ domain.SupportRepository = (*SupportRepositoryPG)(nil)
