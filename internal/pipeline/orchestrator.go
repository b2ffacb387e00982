// Package pipeline drives a claimed generation job from running to a
// terminal state: cost computation, atomic credit debit, provider dispatch,
// render persistence, and compensating refund on failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mugshot/internal/credits"
	"mugshot/internal/domain"
	"mugshot/internal/metrics"
	"mugshot/internal/modelreg"
	"mugshot/internal/providers/image"
	"mugshot/internal/storage"
)

// Dispatcher routes a generation request to the provider backing a model.
// *image.Registry is the production implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, m modelreg.Model, req image.GenerateRequest) ([]image.Payload, error)
}

// RenderPersister saves generated payloads and reports how many survived.
type RenderPersister interface {
	Persist(ctx context.Context, jobID string, payloads []image.Payload) int
}

// Result summarizes one orchestration. The caller is fire-and-forget; the
// summary is only logged and fed into metrics.
type Result struct {
	JobID       string
	Status      domain.JobStatus
	ImagesSaved int
	Cost        int
	Duration    time.Duration
	Err         error
}

// Orchestrator sequences a single job. Per invocation it performs at most
// one debit and at most one compensating refund; render rows and uploads
// accumulate per generated image.
type Orchestrator struct {
	jobs      domain.JobRepository
	projects  domain.ProjectRepository
	prompts   domain.PromptRepository
	assets    domain.AssetRepository
	ledger    *credits.Ledger
	dispatch  Dispatcher
	persister RenderPersister
	blob      storage.BlobStore
	logger    zerolog.Logger
}

// NewOrchestrator wires the pipeline. All collaborators are required except
// blob, which is only used for reference downloads.
func NewOrchestrator(
	jobs domain.JobRepository,
	projects domain.ProjectRepository,
	prompts domain.PromptRepository,
	assets domain.AssetRepository,
	ledger *credits.Ledger,
	dispatch Dispatcher,
	persister RenderPersister,
	blob storage.BlobStore,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		jobs:      jobs,
		projects:  projects,
		prompts:   prompts,
		assets:    assets,
		ledger:    ledger,
		dispatch:  dispatch,
		persister: persister,
		blob:      blob,
		logger:    logger,
	}
}

// Process drives one claimed job to a terminal state. The job must already
// be in running status: the atomic queued->running claim is the caller's
// acquire step, so a job handed here is processed exactly once. All failures
// from this point are caught centrally; nothing propagates to the original
// HTTP caller.
func (o *Orchestrator) Process(ctx context.Context, job *domain.Job) Result {
	start := time.Now()
	o.logger.Info().Str("job_id", job.ID).Str("model", job.Model).Msg("pipeline: processing job")

	if job.Status != domain.JobStatusRunning {
		err := fmt.Errorf("%w: job %s is %s, want running", domain.ErrInvalidTransition, job.ID, job.Status)
		return o.fail(ctx, job, "", 0, false, start, err)
	}

	project, err := o.projects.GetByID(ctx, job.ProjectID)
	if err != nil {
		return o.fail(ctx, job, "", 0, false, start, fmt.Errorf("fetch project %s: %w", job.ProjectID, err))
	}
	prompt, err := o.prompts.GetByProjectID(ctx, job.ProjectID)
	if err != nil {
		return o.fail(ctx, job, project.UserID, 0, false, start, fmt.Errorf("fetch prompt for project %s: %w", job.ProjectID, err))
	}
	cfg, err := prompt.Config()
	if err != nil {
		return o.fail(ctx, job, project.UserID, 0, false, start, fmt.Errorf("decode prompt config: %w", err))
	}

	// Same allow-list and default as the request-validation points; a row
	// written before a model was retired still resolves to something we can
	// route.
	model := modelreg.Parse(job.Model)
	cost := credits.Cost(job.Quality, project.Mode, model)

	if err := o.ledger.Debit(ctx, project.UserID, cost, job.ID, "thumbnail_generation"); err != nil {
		// Nothing was deducted; no refund on this path.
		return o.fail(ctx, job, project.UserID, cost, false, start, err)
	}

	refs := o.downloadReferences(ctx, cfg.Refs)

	payloads, err := o.dispatch.Dispatch(ctx, model, image.GenerateRequest{
		Prompt:          image.BuildPrompt(project, cfg),
		ReferenceImages: refs,
		AspectRatio:     image.AspectRatio(project.Width, project.Height),
		Width:           project.Width,
		Height:          project.Height,
		Variants:        job.Variants,
		JobID:           job.ID,
	})
	if err != nil {
		return o.fail(ctx, job, project.UserID, cost, true, start, fmt.Errorf("%w: %w", domain.ErrProviderFailure, err))
	}
	if len(payloads) == 0 {
		return o.fail(ctx, job, project.UserID, cost, true, start, domain.ErrNoImages)
	}

	saved := o.persister.Persist(ctx, job.ID, payloads)
	if saved == 0 {
		return o.fail(ctx, job, project.UserID, cost, true, start, domain.ErrNothingPersisted)
	}

	if err := o.jobs.MarkSucceeded(ctx, job.ID, cost); err != nil {
		// The renders exist and credits are spent; a failed status write
		// must not trigger a refund.
		o.logger.Error().Err(err).Str("job_id", job.ID).Msg("pipeline: mark succeeded failed")
	}

	duration := time.Since(start)
	metrics.JobsProcessed.WithLabelValues(string(model), string(domain.JobStatusSucceeded)).Inc()
	metrics.JobDuration.WithLabelValues(string(model)).Observe(duration.Seconds())
	metrics.CreditsSpent.Add(float64(cost))
	o.logger.Info().Str("job_id", job.ID).Int("images_saved", saved).Dur("duration", duration).Msg("pipeline: job succeeded")

	return Result{JobID: job.ID, Status: domain.JobStatusSucceeded, ImagesSaved: saved, Cost: cost, Duration: duration}
}

// downloadReferences fetches each reference asset, best-effort: a missing or
// unreadable reference is logged and skipped, never fatal.
func (o *Orchestrator) downloadReferences(ctx context.Context, assetIDs []string) [][]byte {
	if len(assetIDs) == 0 || o.blob == nil {
		return nil
	}
	var refs [][]byte
	for _, id := range assetIDs {
		asset, err := o.assets.Get(ctx, id)
		if err != nil {
			o.logger.Warn().Err(err).Str("asset_id", id).Msg("pipeline: reference asset lookup failed")
			continue
		}
		data, err := o.blob.Download(ctx, storage.BucketUserAssets, asset.Path)
		if err != nil {
			o.logger.Warn().Err(err).Str("asset_id", id).Msg("pipeline: reference download failed")
			continue
		}
		refs = append(refs, data)
	}
	return refs
}

// fail is the single terminal handler for everything after the claim: marks
// the job failed and compensates the debit when one happened. Refund errors
// are swallowed inside the ledger; the job stays failed either way.
func (o *Orchestrator) fail(ctx context.Context, job *domain.Job, userID string, cost int, debited bool, start time.Time, cause error) Result {
	o.logger.Error().Err(cause).Str("job_id", job.ID).Msg("pipeline: job failed")

	if err := o.jobs.MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		o.logger.Error().Err(err).Str("job_id", job.ID).Msg("pipeline: mark failed failed")
	}
	if debited && userID != "" {
		o.ledger.Refund(ctx, userID, cost, job.ID, "generation_failed")
	}

	model := modelreg.Parse(job.Model)
	metrics.JobsProcessed.WithLabelValues(string(model), string(domain.JobStatusFailed)).Inc()
	if errors.Is(cause, domain.ErrInsufficientCredits) {
		metrics.InsufficientCredits.Inc()
	}

	return Result{JobID: job.ID, Status: domain.JobStatusFailed, Cost: cost, Duration: time.Since(start), Err: cause}
}
