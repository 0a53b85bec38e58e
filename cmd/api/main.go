package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utsavhq/utsav-backend/api/routes"
	"github.com/utsavhq/utsav-backend/internal/bundles"
	"github.com/utsavhq/utsav-backend/internal/leads"
	"github.com/utsavhq/utsav-backend/internal/packages"
	"github.com/utsavhq/utsav-backend/internal/settings"
	"github.com/utsavhq/utsav-backend/internal/wallet"
	"github.com/utsavhq/utsav-backend/pkg/config"
	"github.com/utsavhq/utsav-backend/pkg/db"
	"github.com/utsavhq/utsav-backend/pkg/env"
	"github.com/utsavhq/utsav-backend/pkg/logger"
	"github.com/utsavhq/utsav-backend/pkg/metrics"
	"github.com/utsavhq/utsav-backend/pkg/migrate"
	"github.com/utsavhq/utsav-backend/pkg/outbox"
	"github.com/utsavhq/utsav-backend/pkg/redis"
	"github.com/utsavhq/utsav-backend/pkg/square"
)

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	purchaseMetrics := metrics.NewPurchaseMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	var payments wallet.PaymentGateway
	if cfg.Square.AccessToken != "" {
		squareClient, sqErr := square.NewClient(context.Background(), cfg.Square, logg)
		if sqErr != nil {
			logg.Error(context.Background(), "failed to bootstrap square client", sqErr)
			os.Exit(1)
		}
		payments = squareClient
	} else {
		logg.Warn(context.Background(), "square access token missing, wallet top-ups disabled")
	}

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	bundlesService, err := bundles.NewService(bundles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create bundles service", err)
		os.Exit(1)
	}

	packagesService, err := packages.NewService(packages.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create packages service", err)
		os.Exit(1)
	}

	walletRepo := wallet.NewRepository(dbClient.DB())

	walletService, err := wallet.NewService(
		dbClient,
		walletRepo,
		bundlesService,
		payments,
		outboxService,
		purchaseMetrics,
		cfg.Pricing,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	leadsService, err := leads.NewService(
		dbClient,
		leads.NewRepository(dbClient.DB()),
		walletRepo,
		settingsService,
		outboxService,
		purchaseMetrics,
		cfg.Pricing,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create leads service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Leads:    leadsService,
			Wallet:   walletService,
			Bundles:  bundlesService,
			Packages: packagesService,
			Settings: settingsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
