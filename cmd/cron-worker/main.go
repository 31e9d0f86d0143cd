package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	"github.com/dmarquezdev/subvault-backend/internal/authcodes"
	"github.com/dmarquezdev/subvault-backend/internal/catalog"
	"github.com/dmarquezdev/subvault-backend/internal/cron"
	subscriptionsvc "github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/config"
	"github.com/dmarquezdev/subvault-backend/pkg/db"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
	"github.com/dmarquezdev/subvault-backend/pkg/metrics"
	"github.com/dmarquezdev/subvault-backend/pkg/migrate"
	"github.com/dmarquezdev/subvault-backend/pkg/outbox"
	"github.com/dmarquezdev/subvault-backend/pkg/redis"
	"github.com/dmarquezdev/subvault-backend/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	sealer, err := security.NewCredentialSealer(cfg.Security.CredentialKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create credential sealer", err)
		os.Exit(1)
	}

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

	authCodeRepo := authcodes.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	subscriptionRepo := subscriptionsvc.NewRepository(dbClient.DB())
	subscriptionService, err := subscriptionsvc.NewService(subscriptionsvc.ServiceParams{
		Repo:      subscriptionRepo,
		Tx:        dbClient,
		Products:  catalogService,
		AuthCodes: authCodeRepo,
		Sealer:    sealer,
		Events:    outboxService,
		Logger:    logg,
		SweepSize: cfg.Cron.SweepSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:          analytics.NewRepository(dbClient.DB()),
		Subscriptions: subscriptionRepo,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewStatusSweepJob(cron.StatusSweepJobParams{
		Logger:        logg,
		Subscriptions: subscriptionService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create status sweep job", err)
		os.Exit(1)
	}

	backfillJob, err := cron.NewAnalyticsBackfillJob(cron.AnalyticsBackfillJobParams{
		Logger:    logg,
		Analytics: analyticsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics backfill job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob, backfillJob, retentionJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
