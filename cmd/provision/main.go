package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	apperrors "github.com/Proton-105/zaza-provision/internal/errors"
	"github.com/Proton-105/zaza-provision/internal/i18n"
	"github.com/Proton-105/zaza-provision/internal/lifecycle"
	"github.com/Proton-105/zaza-provision/internal/pipeline"
	"github.com/Proton-105/zaza-provision/internal/report"
	"github.com/Proton-105/zaza-provision/internal/runlock"
	"github.com/Proton-105/zaza-provision/pkg/config"
	"github.com/Proton-105/zaza-provision/pkg/logger"
	"github.com/Proton-105/zaza-provision/pkg/metrics"
)

const (
	shutdownTimeout  = 10 * time.Second
	sentryFlushDelay = 2 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	runID := logger.NewRunID()
	ctx = logger.WithRunID(ctx, runID)
	baseLog := logger.New(*cfg)
	log := baseLog.With(slog.String("run_id", runID))

	log.Info("starting settings provisioner",
		slog.String("project", cfg.Supabase.URL),
		slog.String("admin_email", cfg.Admin.Email),
		slog.Bool("direct_database", cfg.UseDirectDatabase()),
	)

	shutdown := lifecycle.NewShutdown(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = shutdown.Execute(shutdownCtx)
	}()

	if cfg.Sentry.Enabled {
		environment := cfg.Sentry.Environment
		if environment == "" {
			environment = cfg.AppEnv
		}
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: environment}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
		} else {
			shutdown.Register(lifecycle.HookFlushSentry, func(context.Context) error {
				sentry.Flush(sentryFlushDelay)
				return nil
			})
		}
	}

	if cfg.Metrics.PushgatewayURL != "" {
		shutdown.Register(lifecycle.HookPushMetrics, func(ctx context.Context) error {
			return metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID)
		})
	}

	catalog, err := i18n.Load("en")
	if err != nil {
		log.Error("failed to load message catalogs", slog.Any("error", err))
		return 1
	}
	printer := report.NewPrinter(os.Stdout, catalog.Translator(cfg.Report.Language), cfg.Report.Format)
	errHandler := apperrors.NewHandler(baseLog)

	rdb, err := runlock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		errHandler.Handle(ctx, err)
		return 1
	}
	if rdb != nil {
		shutdown.Register(lifecycle.HookCloseRedis, func(context.Context) error { return rdb.Close() })
	}

	lock := runlock.New(rdb, cfg.Supabase.URL, runID, cfg.Redis.LockTTL, log)
	if err := lock.Acquire(ctx); err != nil {
		printer.Say("run.locked", err)
		errHandler.Handle(ctx, err)
		return 1
	}
	shutdown.Register(lifecycle.HookReleaseLock, lock.Release)

	pipeline.RegisterTransitionRecorder(metrics.RecordStageTransition)

	printer.Banner()

	summary := execute(ctx, runID, cfg, log, printer, errHandler.Handle)
	if !summary.Success {
		log.Warn("provisioning failed", slog.String("error", summary.Error))
	} else {
		log.Info("provisioning completed", slog.Duration("elapsed", summary.Run.FinishedAt.Sub(summary.Run.StartedAt)))
	}

	return exitCode(summary)
}
