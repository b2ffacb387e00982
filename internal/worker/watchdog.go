package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"mugshot/internal/credits"
	"mugshot/internal/domain"
	"mugshot/internal/metrics"
)

// Watchdog fails jobs that have been running past the deadline, typically
// because a worker died mid-flight, and refunds any credits the dead worker
// had already deducted.
type Watchdog struct {
	jobs     domain.JobRepository
	projects domain.ProjectRepository
	audit    domain.AuditRepository
	ledger   *credits.Ledger
	logger   zerolog.Logger
	maxAge   int
}

func NewWatchdog(jobs domain.JobRepository, projects domain.ProjectRepository, audit domain.AuditRepository, ledger *credits.Ledger, logger zerolog.Logger, maxAgeSeconds int) *Watchdog {
	return &Watchdog{
		jobs:     jobs,
		projects: projects,
		audit:    audit,
		ledger:   ledger,
		logger:   logger,
		maxAge:   maxAgeSeconds,
	}
}

// Sweep fails stuck jobs once. Refunds are issued only when the ledger shows
// a deduct without a matching refund, so re-running the sweep never double
// compensates.
func (wd *Watchdog) Sweep(ctx context.Context) {
	stuck, err := wd.jobs.FailStuckRunning(ctx, wd.maxAge)
	if err != nil {
		wd.logger.Error().Err(err).Msg("watchdog: sweep failed")
		return
	}
	for i := range stuck {
		job := &stuck[i]
		metrics.StuckJobsFailed.Inc()
		wd.logger.Warn().Str("job_id", job.ID).Msg("watchdog: failed stuck job")
		wd.refund(ctx, job)
	}
}

func (wd *Watchdog) refund(ctx context.Context, job *domain.Job) {
	deducts, err := wd.audit.CountByJobAction(ctx, job.ID, domain.AuditActionDeductCredits)
	if err != nil {
		wd.logger.Error().Err(err).Str("job_id", job.ID).Msg("watchdog: ledger lookup failed")
		return
	}
	refunds, err := wd.audit.CountByJobAction(ctx, job.ID, domain.AuditActionRefundCredits)
	if err != nil {
		wd.logger.Error().Err(err).Str("job_id", job.ID).Msg("watchdog: ledger lookup failed")
		return
	}
	if deducts <= refunds {
		return
	}
	project, err := wd.projects.GetByID(ctx, job.ProjectID)
	if err != nil {
		wd.logger.Error().Err(err).Str("job_id", job.ID).Msg("watchdog: project lookup failed")
		return
	}
	wd.ledger.Refund(ctx, project.UserID, job.CostCredits, job.ID, "stuck job")
}

// Schedule registers the sweep on c at the given cron spec.
func (wd *Watchdog) Schedule(ctx context.Context, c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() { wd.Sweep(ctx) })
	return err
}
