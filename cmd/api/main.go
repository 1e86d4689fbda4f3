package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/estimates-backend/api/routes"
	"github.com/angelmondragon/estimates-backend/internal/clientgroups"
	"github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/internal/invoices"
	"github.com/angelmondragon/estimates-backend/internal/users"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/env"
	"github.com/angelmondragon/estimates-backend/pkg/instance"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/metrics"
	"github.com/angelmondragon/estimates-backend/pkg/migrate"
	"github.com/angelmondragon/estimates-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	currency, err := enums.ParseCurrency(cfg.Billing.Currency)
	if err != nil {
		logg.Error(ctx, "invalid billing currency", err)
		os.Exit(1)
	}
	groups := clientgroups.Default(cfg.Billing.Country, currency)

	settings, err := estimates.SettingsFromConfig(cfg)
	if err != nil {
		logg.Error(ctx, "invalid estimate settings", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	estimatesRepo := estimates.NewRepository(dbClient.DB())

	estimateService, err := estimates.NewService(
		dbClient,
		estimatesRepo,
		usersRepo,
		groups,
		invoices.NewRepository(dbClient.DB()),
		settings,
		logg,
		metrics.NewLifecycleMetrics(registry),
	)
	if err != nil {
		logg.Error(ctx, "failed to create estimates service", err)
		os.Exit(1)
	}

	statsService, err := estimates.NewStatsService(estimatesRepo)
	if err != nil {
		logg.Error(ctx, "failed to create stats service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			Gatherer:    registry,
			Estimates:   estimateService,
			Stats:       statsService,
			Users:       usersRepo,
			Groups:      groups,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}
