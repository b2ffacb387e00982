package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"mugshot/internal/domain"
	"mugshot/internal/metrics"
)

// Reconciler cross-checks user balances against the audit ledger. Every
// credit mutation writes a signed ledger row, so for a healthy account the
// sum of deltas equals the live balance. Drift is only reported; fixing it
// is an operator decision.
type Reconciler struct {
	users  domain.UserRepository
	audit  domain.AuditRepository
	logger zerolog.Logger
}

func NewReconciler(users domain.UserRepository, audit domain.AuditRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{users: users, audit: audit, logger: logger}
}

// Sweep checks accounts with ledger activity in the last 24 hours.
func (rc *Reconciler) Sweep(ctx context.Context) {
	ids, err := rc.audit.ActiveUserIDs(ctx, 24)
	if err != nil {
		rc.logger.Error().Err(err).Msg("reconcile: listing active users failed")
		return
	}
	drifted := 0
	for _, id := range ids {
		balance, err := rc.users.Credits(ctx, id)
		if err != nil {
			rc.logger.Warn().Err(err).Str("user_id", id).Msg("reconcile: balance lookup failed")
			continue
		}
		expected, err := rc.audit.SumDeltas(ctx, id)
		if err != nil {
			rc.logger.Warn().Err(err).Str("user_id", id).Msg("reconcile: ledger sum failed")
			continue
		}
		if balance != expected {
			drifted++
			rc.logger.Error().
				Str("user_id", id).
				Int("balance", balance).
				Int("ledger_sum", expected).
				Msg("reconcile: balance drift detected")
		}
	}
	metrics.LedgerDrift.Set(float64(drifted))
	rc.logger.Info().Int("checked", len(ids)).Int("drifted", drifted).Msg("reconcile: sweep complete")
}

// Schedule registers the sweep on c at the given cron spec.
func (rc *Reconciler) Schedule(ctx context.Context, c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() { rc.Sweep(ctx) })
	return err
}
