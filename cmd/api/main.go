package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmarquezdev/subvault-backend/api/routes"
	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	"github.com/dmarquezdev/subvault-backend/internal/authcodes"
	cartsvc "github.com/dmarquezdev/subvault-backend/internal/cart"
	"github.com/dmarquezdev/subvault-backend/internal/catalog"
	"github.com/dmarquezdev/subvault-backend/internal/currency"
	"github.com/dmarquezdev/subvault-backend/internal/refunds"
	subscriptionsvc "github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/config"
	"github.com/dmarquezdev/subvault-backend/pkg/db"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
	"github.com/dmarquezdev/subvault-backend/pkg/migrate"
	"github.com/dmarquezdev/subvault-backend/pkg/outbox"
	"github.com/dmarquezdev/subvault-backend/pkg/redis"
	"github.com/dmarquezdev/subvault-backend/pkg/security"
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

	sealer, err := security.NewCredentialSealer(cfg.Security.CredentialKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create credential sealer", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authCodeRepo := authcodes.NewRepository(dbClient.DB())
	authCodeService, err := authcodes.NewService(authCodeRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth code service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	subscriptionRepo := subscriptionsvc.NewRepository(dbClient.DB())
	refundRepo := refunds.NewRepository(dbClient.DB())

	subscriptionService, err := subscriptionsvc.NewService(subscriptionsvc.ServiceParams{
		Repo:      subscriptionRepo,
		Tx:        dbClient,
		Products:  catalogService,
		AuthCodes: authCodeRepo,
		Sealer:    sealer,
		Events:    outboxService,
		Refunds:   refundRepo,
		Logger:    logg,
		SweepSize: cfg.Cron.SweepSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	refundService, err := refunds.NewService(refunds.ServiceParams{
		Repo:          refundRepo,
		Tx:            dbClient,
		Subscriptions: subscriptionRepo,
		Events:        outboxService,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create refund service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Repo:          cartsvc.NewRepository(dbClient.DB()),
		Products:      catalogService,
		Subscriptions: subscriptionService,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
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

	currencyPrefs, err := currency.NewPreferenceRepository(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create preference repository", err)
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
			authCodeService,
			subscriptionService,
			cartService,
			refundService,
			catalogService,
			analyticsService,
			currencyPrefs,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
