package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/scriptorium-hq/scriptorium/internal/app"
	"github.com/scriptorium-hq/scriptorium/internal/audit"
	"github.com/scriptorium-hq/scriptorium/internal/events"
	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/observability"
	"github.com/scriptorium-hq/scriptorium/internal/papers"
	"github.com/scriptorium-hq/scriptorium/internal/platform/cache"
	"github.com/scriptorium-hq/scriptorium/internal/platform/db"
	"github.com/scriptorium-hq/scriptorium/internal/roles"
	"github.com/scriptorium-hq/scriptorium/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	publishers := events.Multi{
		events.NewRedisPublisher(redisClient, cfg.EventChannel),
		observability.NewEventCounter(metrics),
	}

	var auditHandler *audit.Handler
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		store := audit.NewStore(pool)
		publishers = append(publishers, store)
		auditHandler = audit.NewHandler(logger, audit.NewService(store))
	} else {
		logger.Warn("audit trail disabled, no PG_DSN configured")
	}

	var jobsHandler *jobs.Handler
	if len(cfg.WebhookURLs) > 0 {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		asynqClient := asynq.NewClient(redisOpts)
		defer func() {
			if err := asynqClient.Close(); err != nil {
				logger.Warn("asynq close", slog.Any("error", err))
			}
		}()
		publishers = append(publishers, jobs.NewEventPublisher(asynqClient))
		jobsHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), logger)
	}

	registry := roles.NewRegistry(identity.Normalize(cfg.SuperAdmin), publishers, logger)
	repository := papers.NewRepository()
	paperService := papers.NewService(repository, registry, publishers, logger)
	metrics.RegisterRegistryGauges(func() observability.RegistryStats {
		stats := repository.Stats()
		return observability.RegistryStats{
			Papers:    stats.Papers,
			Comments:  stats.Comments,
			Views:     stats.Views,
			Downloads: stats.Downloads,
		}
	})

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		PapersHandler: papers.NewHandler(logger, paperService),
		RolesHandler:  roles.NewHandler(logger, registry),
		AuditHandler:  auditHandler,
		JobsHandler:   jobsHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
