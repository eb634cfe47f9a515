// Enricher API — синхронное и асинхронное обогащение записей по HTTP.
//
// API:
//   - POST /api/v1/{jobs|candidates}/{id}/enrich — запуск пайплайна
//     (?async=true — публикация запроса в RabbitMQ)
//   - GET/PUT /api/v1/{jobs|candidates}/{id} — чтение и запись записей
//   - /healthz, /metrics
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Enricher/internal/api"
	"github.com/shaiso/Enricher/internal/app"
	"github.com/shaiso/Enricher/internal/config"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.SetupLogger(telemetry.LogConfig{}).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(telemetry.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.Info("starting enricher-api", "config", cfg.File)

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе данных
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	logger.Info("connected to database")

	cat := app.NewCatalog(ctx, cfg, logger)
	defer cat.Close()

	orch, err := app.NewOrchestrator(cfg, stores.Jobs, stores.Candidates, cat, metrics, logger)
	if err != nil {
		logger.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	handlerCfg := api.Config{
		Runner:         orch,
		Jobs:           stores.Jobs,
		Candidates:     stores.Candidates,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		Logger:         logger,
	}

	// RabbitMQ нужен только для ?async=true
	mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, "enricher-api", logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, async enrichment disabled", "error", err)
	} else {
		defer mqConn.Close()
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		handlerCfg.Requester = mq.NewPublisher(mqConn, logger)
		logger.Info("RabbitMQ connected")
	}

	mux := http.NewServeMux()
	api.NewHandler(handlerCfg).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Запуски пайплайна могут идти минутами: ждём до 30 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
