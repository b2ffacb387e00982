package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mugshot/internal/domain"
)

// ReferralRepositoryPG implements domain.ReferralRepository.
type ReferralRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewReferralRepository creates a new referral repository backed by PostgreSQL.
func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepositoryPG {
	return &ReferralRepositoryPG{pool: pool}
}

const referralCodeColumns = `code, user_id, uses_count, max_uses, reward_credits, created_at`

// GetCodeByUser returns the code owned by userID.
func (r *ReferralRepositoryPG) GetCodeByUser(ctx context.Context, userID string) (*domain.ReferralCode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+referralCodeColumns+` FROM referral_codes WHERE user_id = $1`, userID)
	return scanReferralCode(row)
}

// GetCode looks up a code by its value.
func (r *ReferralRepositoryPG) GetCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+referralCodeColumns+` FROM referral_codes WHERE code = $1`, code)
	return scanReferralCode(row)
}

// CreateCode inserts a new invite code.
func (r *ReferralRepositoryPG) CreateCode(ctx context.Context, code *domain.ReferralCode) error {
	query := `
INSERT INTO referral_codes (code, user_id, max_uses, reward_credits)
VALUES ($1, $2, $3, $4)
RETURNING uses_count, created_at;
`
	return r.pool.QueryRow(ctx, query, code.Code, code.UserID, code.MaxUses, code.RewardCredits).
		Scan(&code.UsesCount, &code.CreatedAt)
}

// IncrementUses bumps the usage counter for a code.
func (r *ReferralRepositoryPG) IncrementUses(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE referral_codes SET uses_count = uses_count + 1 WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateReward records an applied referral. The referred_id unique constraint
// guarantees an account can only ever be referred once; a duplicate insert
// surfaces as ErrConflict.
func (r *ReferralRepositoryPG) CreateReward(ctx context.Context, reward *domain.ReferralReward) error {
	query := `
INSERT INTO referral_rewards (code, referrer_id, referred_id, credits_earned)
VALUES ($1, $2, $3, $4)
ON CONFLICT (referred_id) DO NOTHING
RETURNING id, created_at;
`
	err := r.pool.QueryRow(ctx, query, reward.Code, reward.ReferrerID, reward.ReferredID, reward.CreditsEarned).
		Scan(&reward.ID, &reward.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrConflict
	}
	return err
}

// ListRewards returns rewards earned by a referrer, newest first.
func (r *ReferralRepositoryPG) ListRewards(ctx context.Context, referrerID string) ([]domain.ReferralReward, error) {
	query := `
SELECT id, code, referrer_id, referred_id, credits_earned, created_at
FROM referral_rewards
WHERE referrer_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []domain.ReferralReward
	for rows.Next() {
		var rr domain.ReferralReward
		if err := rows.Scan(&rr.ID, &rr.Code, &rr.ReferrerID, &rr.ReferredID, &rr.CreditsEarned, &rr.CreatedAt); err != nil {
			return nil, err
		}
		rewards = append(rewards, rr)
	}
	return rewards, rows.Err()
}

func scanReferralCode(row pgx.Row) (*domain.ReferralCode, error) {
	var c domain.ReferralCode
	if err := row.Scan(&c.Code, &c.UserID, &c.UsesCount, &c.MaxUses, &c.RewardCredits, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ domain.ReferralRepository = (*ReferralRepositoryPG)(nil)
