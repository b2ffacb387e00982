package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"mugshot/internal/adapter/redislock"
	"mugshot/internal/adapter/repo"
	"mugshot/internal/credits"
	"mugshot/internal/infra"
	"mugshot/internal/pipeline"
	"mugshot/internal/providers/image"
	"mugshot/internal/storage"
	"mugshot/internal/worker"
)

const (
	watchdogSpec  = "@every 1m"
	reconcileSpec = "@every 1h"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	blob, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	var locker *redislock.Locker
	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: redis unavailable, claim locks disabled")
	} else {
		defer redisClient.Close()
		locker = redislock.New(redisClient, cfg.StuckJobMaxAge)
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	registry := image.NewRegistry(image.RegistryOptions{
		Gemini:            image.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiBaseURL, httpClient),
		ByteDance:         image.NewByteDanceProvider(cfg.ByteDanceAPIKey, cfg.ByteDanceEndpoint, httpClient),
		Fal:               image.NewFalProvider(cfg.FalAPIKey, cfg.FalBaseURL, httpClient),
		RequestsPerMinute: cfg.ProviderRPM,
	})

	users := repo.NewUserRepository(pool)
	jobs := repo.NewJobRepository(pool)
	projects := repo.NewProjectRepository(pool)
	prompts := repo.NewPromptRepository(pool)
	renders := repo.NewRenderRepository(pool)
	assets := repo.NewAssetRepository(pool)
	audit := repo.NewAuditRepository(pool)
	ledger := credits.NewLedger(users, audit, logger)

	persister := pipeline.NewPersister(blob, renders, httpClient, logger)
	orch := pipeline.NewOrchestrator(jobs, projects, prompts, assets, ledger, registry, persister, blob, logger)

	c := cron.New()
	watchdog := worker.NewWatchdog(jobs, projects, audit, ledger, logger, int(cfg.StuckJobMaxAge.Seconds()))
	if err := watchdog.Schedule(ctx, c, watchdogSpec); err != nil {
		logger.Fatal().Err(err).Msg("worker: schedule watchdog failed")
	}
	reconciler := worker.NewReconciler(users, audit, logger)
	if err := reconciler.Schedule(ctx, c, reconcileSpec); err != nil {
		logger.Fatal().Err(err).Msg("worker: schedule reconciler failed")
	}
	c.Start()
	defer c.Stop()

	w := worker.New(jobs, orch, locker, logger, cfg.WorkerConcurrency, cfg.JobPollInterval)
	w.Run(ctx)
}
