// Enricher Worker — выполняет асинхронные запросы обогащения.
//
// Worker:
//   - Получает enrich.requested из очереди enrich.requests
//   - Запускает пайплайн через оркестратор
//   - Публикует enrich.completed с результатом
//
// Сообщения, которые не удалось обработать, уходят в DLQ.
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shaiso/Enricher/internal/app"
	"github.com/shaiso/Enricher/internal/config"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/telemetry"
	"github.com/shaiso/Enricher/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.SetupLogger(telemetry.LogConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.Info("starting enricher-worker", "config", cfg.File)

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	logger.Info("database connected")

	cat := app.NewCatalog(ctx, cfg, logger)
	defer cat.Close()

	orch, err := app.NewOrchestrator(cfg, stores.Jobs, stores.Candidates, cat, metrics, logger)
	if err != nil {
		logger.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	// Без RabbitMQ worker бесполезен
	mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, "enricher-worker", logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Debug("topology declared", "topology", mq.TopologyInfo())

	w := worker.New(worker.Config{
		Runner:    orch,
		Completer: mq.NewPublisher(mqConn, logger),
		Conn:      mqConn,
		Prefetch:  cfg.Worker.Prefetch,
		Logger:    logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	ops := app.OpsServer(cfg.Worker.Port, mqConn.IsConnected)
	go func() {
		logger.Info("listening", "addr", ops.Addr)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	w.Stop()
	if err := ops.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("enricher-worker stopped")
}
