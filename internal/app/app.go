// Package app собирает зависимости бинарников из конфигурации.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Enricher/internal/catalog"
	"github.com/shaiso/Enricher/internal/config"
	"github.com/shaiso/Enricher/internal/engine"
	"github.com/shaiso/Enricher/internal/orchestrator"
	"github.com/shaiso/Enricher/internal/repo"
)

// ClientName — имя клиента при подключении к MCP шлюзу и RabbitMQ.
const ClientName = "enricher"

// Stores — репозитории записей.
type Stores struct {
	Pool       *pgxpool.Pool
	Jobs       *repo.RecordRepo
	Candidates *repo.RecordRepo
}

// OpenStores подключается к Postgres и создаёт таблицы записей.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	pool, err := repo.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		return nil, err
	}

	s := &Stores{
		Pool:       pool,
		Jobs:       repo.NewRecordRepo(pool, cfg.Tables.Jobs),
		Candidates: repo.NewRecordRepo(pool, cfg.Tables.Candidates),
	}

	for _, r := range []*repo.RecordRepo{s.Jobs, s.Candidates} {
		if err := r.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close закрывает пул подключений.
func (s *Stores) Close() {
	s.Pool.Close()
}

// Pipelines строит пайплайны с инструментами и параллелизмом из конфигурации.
func Pipelines(cfg *config.Config) []*engine.Pipeline {
	return []*engine.Pipeline{
		orchestrator.JobPipeline(cfg.Tools.Job, cfg.Pipelines.Job.Concurrency),
		orchestrator.CandidatePipeline(cfg.Tools.Candidate, cfg.Pipelines.Candidate.Concurrency),
	}
}

// Catalog — каталог операций и функция его закрытия.
type Catalog struct {
	orchestrator.Catalog
	Close func() error
}

// NewCatalog выбирает каталог: MCP шлюз, если задан catalog.gateway_url,
// иначе HTTP endpoints из catalog.endpoints.
func NewCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) Catalog {
	ts := catalog.NewTokenSource(ctx, cfg.TokenConfig())

	if cfg.UseGateway() {
		mcpCatalog := catalog.NewMCPCatalog(catalog.MCPConfig{
			URL:         cfg.Catalog.GatewayURL,
			TokenSource: ts,
			ClientName:  ClientName,
			Logger:      logger,
		})
		logger.Info("using MCP gateway", "url", cfg.Catalog.GatewayURL, "auth", ts != nil)
		return Catalog{Catalog: mcpCatalog, Close: mcpCatalog.Close}
	}

	var opts []catalog.HTTPOption
	if ts != nil {
		opts = append(opts, catalog.WithTokenSource(ts))
	}
	registry := catalog.NewHTTPRegistry(cfg.Catalog.Endpoints, opts...)
	logger.Info("using HTTP tool endpoints", "count", registry.Count())
	return Catalog{Catalog: registry, Close: func() error { return nil }}
}

// NewOrchestrator собирает оркестратор поверх хранилищ и каталога.
func NewOrchestrator(cfg *config.Config, jobs, candidates orchestrator.Store, cat orchestrator.Catalog, observer orchestrator.Observer, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	orch, err := orchestrator.New(orchestrator.Config{
		Jobs:       jobs,
		Candidates: candidates,
		Catalog:    cat,
		Pipelines:  Pipelines(cfg),
		Observer:   observer,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	return orch, nil
}

// OpsServer создаёт HTTP сервер с /healthz и /metrics для фоновых сервисов.
// Если любая из ready возвращает false, /healthz отвечает 503.
func OpsServer(port string, ready ...func() bool) *http.Server {
	started := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		for _, ok := range ready {
			if !ok() {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(started).Round(time.Second))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
