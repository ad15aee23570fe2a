package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/listingz-backend/api/routes"
	product "github.com/angelmondragon/listingz-backend/internal/products"
	"github.com/angelmondragon/listingz-backend/pkg/auth/session"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/instance"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
	"github.com/angelmondragon/listingz-backend/pkg/migrate"
	"github.com/angelmondragon/listingz-backend/pkg/redis"
	"github.com/angelmondragon/listingz-backend/pkg/server"
)

const serviceName = "listings-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "listings api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers := []io.Closer{dbClient}
	defer func() {
		if closeErr := server.CloseAll(closers...); closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient, migrate.Target{
		Service: migrate.ServiceListings,
		Models:  []any{&models.Product{}, &models.OwnerStatus{}},
	}); err != nil {
		return err
	}

	// redis is shared with identity-api: idempotency replays plus session checks
	var (
		redisClient *redis.Client
		sessions    session.AccessSessionChecker
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient)
		sessionManager, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			return err
		}
		sessions = sessionManager
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys and session revocation are not enforced")
	}

	if cfg.ServiceAuth.Token == "" {
		logg.Warn(ctx, "service token not set, internal owner-status endpoint is open")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry, "listings")

	productService, err := product.NewService(product.ServiceParams{
		Repo:   product.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		return err
	}

	addr := instance.Addr(cfg.App.Port)
	bootCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"redis":    redisClient != nil,
	})
	logg.Info(bootCtx, "starting listings api server")

	srv := &http.Server{
		Addr: addr,
		Handler: routes.NewListingsRouter(routes.ListingsDeps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessions,
			Products:    productService,
			Gatherer:    registry,
			HTTPMetrics: httpMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server.Run(ctx, logg, srv, nil, cfg.App.ShutdownTimeout)
}
