package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mugshot/internal/adapter/repo"
	"mugshot/internal/credits"
	"mugshot/internal/http/handlers"
	httpapi "mugshot/internal/http/httpapi"
	"mugshot/internal/infra"
	"mugshot/internal/infra/geoip"
	"mugshot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.RunMigrations(cfg); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	blob, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	var geoResolver geoip.CountryResolver
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, country resolution disabled")
		} else {
			defer resolver.Close()
			geoResolver = resolver
		}
	}

	users := repo.NewUserRepository(dbpool)
	audit := repo.NewAuditRepository(dbpool)
	ledger := credits.NewLedger(users, audit, logger)

	app := &handlers.App{
		Users:       users,
		Jobs:        repo.NewJobRepository(dbpool),
		Projects:    repo.NewProjectRepository(dbpool),
		Prompts:     repo.NewPromptRepository(dbpool),
		Renders:     repo.NewRenderRepository(dbpool),
		Assets:      repo.NewAssetRepository(dbpool),
		Audit:       audit,
		Billing:     repo.NewBillingRepository(dbpool),
		Referrals:   repo.NewReferralRepository(dbpool),
		Support:     repo.NewSupportRepository(dbpool),
		Preferences: repo.NewPreferencesRepository(dbpool),
		Social:      repo.NewSocialRepository(dbpool),
		Ledger:      ledger,
		Blob:        blob,
		Redis:       redisClient,
		GeoIP:       geoResolver,
		Config:      cfg,
		Logger:      logger,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
