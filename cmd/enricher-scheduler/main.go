// Enricher Scheduler — периодически запрашивает обогащение записей,
// которые ещё не обогащены (backfill).
//
// Тик выполняет только лидер (pg advisory lock), поэтому можно
// запускать несколько реплик.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Enricher/internal/app"
	"github.com/shaiso/Enricher/internal/config"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/repo"
	"github.com/shaiso/Enricher/internal/scheduler"
	"github.com/shaiso/Enricher/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.SetupLogger(telemetry.LogConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.Info("starting enricher-scheduler", "cron", cfg.Scheduler.Cron)

	if err := scheduler.ValidateCronExpr(cfg.Scheduler.Cron); err != nil {
		logger.Error("invalid scheduler.cron", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	logger.Info("db connected")

	mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, "enricher-scheduler", logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(scheduler.Config{
		Targets:   scheduler.DefaultTargets(stores.Jobs, stores.Candidates),
		Requester: mq.NewPublisher(mqConn, logger),
		Leader:    repo.NewAdvisoryLock(stores.Pool, repo.SchedulerLockKey),
		Logger:    logger,
		BatchSize: cfg.Scheduler.BatchSize,
	})

	ops := app.OpsServer(cfg.Scheduler.Port, mqConn.IsConnected)
	go func() {
		logger.Info("listening", "addr", ops.Addr)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	if err := sched.Run(ctx, cfg.Scheduler.Cron); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
	}

	if err := ops.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("enricher-scheduler stopped")
}
