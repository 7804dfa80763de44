package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sydney-stones/rfwidjet-server/internal/adapter/repo"
	"github.com/sydney-stones/rfwidjet-server/internal/http/handlers"
	"github.com/sydney-stones/rfwidjet-server/internal/http/httpapi"
	"github.com/sydney-stones/rfwidjet-server/internal/imaging"
	"github.com/sydney-stones/rfwidjet-server/internal/infra"
	"github.com/sydney-stones/rfwidjet-server/internal/infra/geoip"
	"github.com/sydney-stones/rfwidjet-server/internal/middleware"
	providertryon "github.com/sydney-stones/rfwidjet-server/internal/providers/tryon"
	"github.com/sydney-stones/rfwidjet-server/internal/storage"
	"github.com/sydney-stones/rfwidjet-server/internal/tryon"
	"github.com/sydney-stones/rfwidjet-server/internal/usage"
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

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	merchants := repo.NewMerchantRepository(dbpool)
	usageStore := repo.NewUsageRepository(dbpool)
	ledger := usage.NewLedger(merchants, usageStore, cfg.OverageRate)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	generator := providertryon.NewGeminiProvider(providertryon.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	})

	cache := tryon.NewCache(cfg.CacheTTL)
	cost := tryon.DefaultCostModel()
	cost.BaseFee = cfg.CostBaseFee
	retry := tryon.RetryPolicy{MaxAttempts: cfg.RetryMaxTries, BaseDelay: cfg.RetryBaseDelay, MaxJitter: cfg.RetryBaseDelay}

	service, err := tryon.NewService(tryon.Config{
		MaxInputBytes:  cfg.MaxInputMB << 20,
		OptimizeBudget: cfg.OptimizeKB << 10,
		RequestTimeout: cfg.RequestTimeout,
		StorageBaseURL: cfg.StorageBaseURL,
	}, logger, imaging.NewResolver(nil, 15*time.Second), cache, generator, ledger, fileStore, cost, retry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build tryon service")
	}
	service.StartSweeper(ctx, cfg.CacheTTL/4)

	var lookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(logger, service, ledger, merchants)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		DefaultLocale:   "en",
		CountryLookup:   lookup,
		StaticDir:       fileStore.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
