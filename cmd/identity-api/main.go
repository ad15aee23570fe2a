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
	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/internal/auth"
	"github.com/angelmondragon/listingz-backend/internal/propagation"
	"github.com/angelmondragon/listingz-backend/pkg/auth/session"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/instance"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/mailer"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
	"github.com/angelmondragon/listingz-backend/pkg/migrate"
	"github.com/angelmondragon/listingz-backend/pkg/redis"
	"github.com/angelmondragon/listingz-backend/pkg/server"
)

const serviceName = "identity-api"

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
		logg.Error(context.Background(), "identity api stopped unexpectedly", err)
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
		Service: migrate.ServiceIdentity,
		Models:  []any{&models.Account{}},
	}); err != nil {
		return err
	}

	// sessions live in redis, so identity-api cannot start without it
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	closers = append(closers, redisClient)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry, "identity")
	propagationMetrics := metrics.NewPropagationMetrics(registry)

	client, err := propagation.NewClient(cfg.Propagation, cfg.ServiceAuth.Token)
	if err != nil {
		return err
	}

	var (
		notifier   propagation.Notifier
		dispatcher *propagation.Dispatcher
	)
	if cfg.Propagation.IsAsync() {
		dispatcher, err = propagation.NewDispatcher(propagation.DispatcherParams{
			Sender:  client,
			Logger:  logg,
			Metrics: propagationMetrics,
			Config:  cfg.Propagation,
		})
		if err != nil {
			return err
		}
		notifier = dispatcher
	} else {
		notifier, err = propagation.NewInline(client, logg, propagationMetrics)
		if err != nil {
			return err
		}
	}

	accountRepo := accounts.NewRepository(dbClient.DB())
	mail := mailer.New(cfg.Mail, logg)

	accountService, err := accounts.NewService(accounts.ServiceParams{
		Repo:     accountRepo,
		Notifier: notifier,
		Sessions: sessionManager,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		AccountRepo:    accountRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		AccountRepo:    accountRepo,
		Mailer:         mail,
		PasswordConfig: cfg.Password,
		PublicBaseURL:  cfg.App.PublicBaseURL,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	passwordService, err := auth.NewPasswordService(auth.PasswordServiceParams{
		AccountRepo:    accountRepo,
		Mailer:         mail,
		PasswordConfig: cfg.Password,
		PublicBaseURL:  cfg.App.PublicBaseURL,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	if cfg.ServiceAuth.Token == "" {
		logg.Warn(ctx, "service token not set, status propagation calls are unauthenticated")
	}

	addr := instance.Addr(cfg.App.Port)
	bootCtx := logg.WithFields(ctx, map[string]any{
		"env":              cfg.App.Env,
		"addr":             addr,
		"instance":         instance.GetID(),
		"propagation_mode": cfg.Propagation.Mode,
		"peer_url":         cfg.Propagation.PeerURL,
	})
	logg.Info(bootCtx, "starting identity api server")

	srv := &http.Server{
		Addr: addr,
		Handler: routes.NewIdentityRouter(routes.IdentityDeps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Auth:        authService,
			Register:    registerService,
			Password:    passwordService,
			Accounts:    accountService,
			Gatherer:    registry,
			HTTPMetrics: httpMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// the dispatcher outlives the http drain so late status changes still queue
	dispatchCtx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatch()
	if dispatcher != nil {
		go func() {
			if runErr := dispatcher.Run(dispatchCtx); runErr != nil {
				logg.Error(bootCtx, "propagation dispatcher stopped", runErr)
			}
		}()
	}

	err = server.Run(ctx, logg, srv, nil, cfg.App.ShutdownTimeout)

	stopDispatch()
	if dispatcher != nil {
		select {
		case <-dispatcher.Done():
		case <-time.After(cfg.App.ShutdownTimeout):
			logg.Warn(bootCtx, "propagation dispatcher did not stop before shutdown timeout")
		}
	}
	return err
}
