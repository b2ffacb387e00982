// Package worker runs the background side of the system: the job poll loop,
// the stuck-job watchdog and the ledger reconciliation sweep.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mugshot/internal/adapter/redislock"
	"mugshot/internal/domain"
	"mugshot/internal/metrics"
	"mugshot/internal/pipeline"
)

// Worker polls for queued jobs and drives them through the pipeline with a
// fixed number of goroutines. The database status flip in ClaimQueued is the
// ownership handoff; the Redis lock is a second guard against the same job
// reaching two processors.
type Worker struct {
	jobs         domain.JobRepository
	orch         *pipeline.Orchestrator
	locker       *redislock.Locker
	logger       zerolog.Logger
	concurrency  int
	pollInterval time.Duration
}

func New(jobs domain.JobRepository, orch *pipeline.Orchestrator, locker *redislock.Locker, logger zerolog.Logger, concurrency int, pollInterval time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		jobs:         jobs,
		orch:         orch,
		locker:       locker,
		logger:       logger,
		concurrency:  concurrency,
		pollInterval: pollInterval,
	}
}

// Run blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("worker: started")
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			w.loop(ctx, n)
		}(i)
	}
	wg.Wait()
	w.logger.Info().Msg("worker: stopped")
}

func (w *Worker) loop(ctx context.Context, n int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.jobs.ClaimQueued(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, context.Canceled) {
				w.logger.Error().Err(err).Int("loop", n).Msg("worker: claim failed")
			}
			w.sleep(ctx)
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *domain.Job) {
	if w.locker != nil {
		ok, err := w.locker.Acquire(ctx, job.ID)
		if err != nil {
			w.logger.Warn().Err(err).Str("job_id", job.ID).Msg("worker: job lock unavailable, proceeding")
		}
		if !ok {
			w.logger.Warn().Str("job_id", job.ID).Msg("worker: job already locked, skipping")
			return
		}
		defer w.locker.Release(ctx, job.ID)
	}

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	res := w.orch.Process(ctx, job)
	evt := w.logger.Info()
	if res.Err != nil {
		evt = w.logger.Warn().Err(res.Err)
	}
	evt.Str("job_id", res.JobID).
		Str("status", string(res.Status)).
		Int("images", res.ImagesSaved).
		Int("cost", res.Cost).
		Dur("duration", res.Duration).
		Msg("worker: job finished")
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}
