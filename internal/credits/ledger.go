package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mugshot/internal/domain"
)

const (
	refundAttempts = 3
	refundBackoff  = 500 * time.Millisecond
)

// Ledger mutates user credit balances and appends one audit row per
// mutation. Debits are a single atomic conditional decrement, so two
// concurrent jobs for the same user can never drive the balance negative.
type Ledger struct {
	users  domain.UserRepository
	audit  domain.AuditRepository
	logger zerolog.Logger
}

// NewLedger builds a Ledger over the given stores.
func NewLedger(users domain.UserRepository, audit domain.AuditRepository, logger zerolog.Logger) *Ledger {
	return &Ledger{users: users, audit: audit, logger: logger}
}

// Debit removes amount credits from the user, recording a deduct_credits
// entry with delta = -amount. Returns domain.ErrInsufficientCredits without
// touching the balance when it is too low.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int, jobID, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: debit amount must be positive, got %d", amount)
	}
	if err := l.users.DebitCredits(ctx, userID, amount); err != nil {
		return err
	}
	entry := &domain.AuditEntry{
		UserID:       userID,
		Action:       domain.AuditActionDeductCredits,
		DeltaCredits: -amount,
		Meta:         domain.AuditMeta(map[string]any{"job_id": jobID, "reason": reason}),
	}
	if err := l.audit.Append(ctx, entry); err != nil {
		// The debit applied; a missing audit row is reconciliation drift,
		// not a reason to fail the job.
		l.logger.Error().Err(err).Str("user_id", userID).Str("job_id", jobID).Msg("ledger: audit append after debit failed")
	}
	l.logger.Info().Str("user_id", userID).Str("job_id", jobID).Int("amount", amount).Msg("ledger: credits debited")
	return nil
}

// Refund restores amount credits, recording a refund_credits entry with
// delta = +amount. Failures are retried with backoff and finally logged,
// never propagated: the job is already failed and re-raising would change
// nothing for the caller.
func (l *Ledger) Refund(ctx context.Context, userID string, amount int, jobID, reason string) {
	if amount <= 0 {
		return
	}
	var err error
	for attempt := 1; attempt <= refundAttempts; attempt++ {
		if err = l.users.CreditCredits(ctx, userID, amount); err == nil {
			break
		}
		l.logger.Warn().Err(err).Str("user_id", userID).Str("job_id", jobID).Int("attempt", attempt).Msg("ledger: refund attempt failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(refundBackoff * time.Duration(attempt)):
		}
	}
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Str("job_id", jobID).Int("amount", amount).Msg("ledger: refund abandoned, credits lost pending reconciliation")
		return
	}
	entry := &domain.AuditEntry{
		UserID:       userID,
		Action:       domain.AuditActionRefundCredits,
		DeltaCredits: amount,
		Meta:         domain.AuditMeta(map[string]any{"job_id": jobID, "reason": reason}),
	}
	if err := l.audit.Append(ctx, entry); err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Str("job_id", jobID).Msg("ledger: audit append after refund failed")
	}
	l.logger.Info().Str("user_id", userID).Str("job_id", jobID).Int("amount", amount).Msg("ledger: credits refunded")
}

// Grant adds credits outside the job flow (signup grants, referral rewards).
func (l *Ledger) Grant(ctx context.Context, userID string, amount int, action string, meta map[string]any) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: grant amount must be positive, got %d", amount)
	}
	if err := l.users.CreditCredits(ctx, userID, amount); err != nil {
		return err
	}
	entry := &domain.AuditEntry{
		UserID:       userID,
		Action:       action,
		DeltaCredits: amount,
		Meta:         domain.AuditMeta(meta),
	}
	if err := l.audit.Append(ctx, entry); err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Str("action", action).Msg("ledger: audit append after grant failed")
	}
	return nil
}
