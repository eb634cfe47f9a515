package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
)

// Runner запускает пайплайн синхронно (*orchestrator.Orchestrator).
type Runner interface {
	RunPipeline(ctx context.Context, pipeline, id string) (*orchestrator.Result, error)
}

// RecordStore — хранилище записей одного типа (*repo.RecordRepo).
type RecordStore interface {
	Get(ctx context.Context, id string) (domain.Record, error)
	Put(ctx context.Context, record domain.Record) error
}

// Requester публикует асинхронные запросы обогащения (*mq.Publisher).
type Requester interface {
	PublishEnrichRequested(ctx context.Context, payload mq.EnrichRequestedPayload) (string, error)
}

// RequestMetrics учитывает HTTP запросы (*telemetry.Metrics).
type RequestMetrics interface {
	HTTPRequest(method string, status int)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	runner    Runner
	stores    map[domain.Kind]RecordStore
	requester Requester
	metrics   RequestMetrics
	metricsH  http.Handler
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Runner Runner

	Jobs       RecordStore
	Candidates RecordStore

	// Requester — для ?async=true (опционально).
	Requester Requester

	// Metrics — счётчик запросов (опционально).
	Metrics RequestMetrics

	// MetricsHandler отдаётся на /metrics (опционально, обычно promhttp.Handler()).
	MetricsHandler http.Handler

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stores := make(map[domain.Kind]RecordStore, 2)
	if cfg.Jobs != nil {
		stores[domain.KindJob] = cfg.Jobs
	}
	if cfg.Candidates != nil {
		stores[domain.KindCandidate] = cfg.Candidates
	}

	return &Handler{
		runner:    cfg.Runner,
		stores:    stores,
		requester: cfg.Requester,
		metrics:   cfg.Metrics,
		metricsH:  cfg.MetricsHandler,
		logger:    logger,
	}
}
