package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmarquina/shoplink-backend/api/routes"
	"github.com/dmarquina/shoplink-backend/internal/commissions"
	"github.com/dmarquina/shoplink-backend/internal/inventory"
	"github.com/dmarquina/shoplink-backend/internal/orders"
	"github.com/dmarquina/shoplink-backend/internal/settlement"
	stripewebhook "github.com/dmarquina/shoplink-backend/internal/webhooks/stripe"
	"github.com/dmarquina/shoplink-backend/pkg/config"
	"github.com/dmarquina/shoplink-backend/pkg/db"
	"github.com/dmarquina/shoplink-backend/pkg/logger"
	"github.com/dmarquina/shoplink-backend/pkg/metrics"
	"github.com/dmarquina/shoplink-backend/pkg/migrate"
	"github.com/dmarquina/shoplink-backend/pkg/redis"
	pkgstripe "github.com/dmarquina/shoplink-backend/pkg/stripe"
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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Orders:      orders.NewRepository(dbClient.DB()),
		Commissions: commissions.NewRepository(dbClient.DB()),
		Stock:       inventory.NewLedger(dbClient.DB()),
		Logger:      logg,
		Metrics:     settlementMetrics,
		Config:      cfg.Settlement,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(
		redisClient,
		cfg.Settlement.EventIdempotencyTTL,
		cfg.Settlement.EventIdempotencyScope,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			stripeClient,
			settlementService,
			webhookGuard,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
