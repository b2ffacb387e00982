package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// BillingRepositoryPG implements domain.BillingRepository. This is pure
// bookkeeping; payment-provider integration lives outside this service.
type BillingRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewBillingRepository creates a new billing repository backed by PostgreSQL.
func NewBillingRepository(pool *pgxpool.Pool) *BillingRepositoryPG {
	return &BillingRepositoryPG{pool: pool}
}

// ListPlans returns active plans in display order.
func (r *BillingRepositoryPG) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	query := `
SELECT id, name, description, price_monthly, price_yearly, credits_per_month, features, is_active, display_order
FROM plans
WHERE is_active
ORDER BY display_order ASC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceMonthly, &p.PriceYearly, &p.CreditsPerMonth, &p.Features, &p.IsActive, &p.DisplayOrder); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetSubscription returns the user's subscription, or ErrNotFound for
// users who never subscribed (the free tier has no row).
func (r *BillingRepositoryPG) GetSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `
SELECT id, user_id, plan_id, status, period_start, period_end, cancel_at_period_end, created_at
FROM subscriptions
WHERE user_id = $1;
`
	row := r.pool.QueryRow(ctx, query, userID)
	var s domain.Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.PeriodStart, &s.PeriodEnd, &s.CancelAtPeriodEnd, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListHistory returns a page of billing events plus the total count.
func (r *BillingRepositoryPG) ListHistory(ctx context.Context, userID string, limit, offset int) ([]domain.BillingEvent, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM billing_events WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
SELECT id, user_id, amount, currency, description, invoice_url, status, created_at
FROM billing_events
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []domain.BillingEvent
	for rows.Next() {
		var e domain.BillingEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Currency, &e.Description, &e.InvoiceURL, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

var _ domain.BillingRepository = (*BillingRepositoryPG)(nil)
