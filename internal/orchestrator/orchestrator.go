package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
	"github.com/shaiso/Enricher/internal/repo"
	"github.com/shaiso/Enricher/internal/telemetry"
)

// Стадии, после которых сохраняется запись (метка метрик).
const (
	StageSeed       = "seed"
	StageDependents = "dependents"
)

// Store — хранилище записей одного типа.
type Store interface {
	Get(ctx context.Context, id string) (domain.Record, error)
	Put(ctx context.Context, record domain.Record) error
}

// Catalog — каталог операций по имени.
type Catalog interface {
	Lookup(ctx context.Context, names ...string) (map[string]engine.Operation, error)
}

// Observer получает события запусков (метрики).
type Observer interface {
	engine.Observer
	RunFinished(pipeline string, status domain.RunStatus)
	RecordWritten(pipeline, stage string)
}

// Orchestrator выполняет пайплайны обогащения.
//
// Один запуск проходит состояния:
//
//	Fetch → Resolve → SeedStage → DependentStage → Terminal
//
// Seed-результат сохраняется сразу после успеха, зависимые результаты —
// одной записью после стадии. Ошибки операций не прерывают запуск;
// если seed-результат сохранить не удалось, он сохраняется вместе с
// зависимыми.
type Orchestrator struct {
	stores    map[domain.Kind]Store
	catalog   Catalog
	pipelines map[string]*engine.Pipeline
	observer  Observer
	logger    *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Stores
	Jobs       Store
	Candidates Store

	// Catalog — каталог операций.
	Catalog Catalog

	// Pipelines — доступные пайплайны (default: JobPipeline и
	// CandidatePipeline с инструментами по умолчанию).
	Pipelines []*engine.Pipeline

	// Observer — необязательный наблюдатель (метрики).
	Observer Observer

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipelines := cfg.Pipelines
	if len(pipelines) == 0 {
		pipelines = []*engine.Pipeline{
			JobPipeline(nil, DefaultJobConcurrency),
			CandidatePipeline(nil, DefaultCandidateConcurrency),
		}
	}

	o := &Orchestrator{
		stores:    make(map[domain.Kind]Store),
		catalog:   cfg.Catalog,
		pipelines: make(map[string]*engine.Pipeline, len(pipelines)),
		observer:  cfg.Observer,
		logger:    logger,
	}

	if cfg.Jobs != nil {
		o.stores[domain.KindJob] = cfg.Jobs
	}
	if cfg.Candidates != nil {
		o.stores[domain.KindCandidate] = cfg.Candidates
	}

	for _, p := range pipelines {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", p.Name, err)
		}
		o.pipelines[p.Name] = p
	}

	return o, nil
}

// Pipeline возвращает пайплайн по имени.
func (o *Orchestrator) Pipeline(name string) (*engine.Pipeline, bool) {
	p, ok := o.pipelines[name]
	return p, ok
}

// RunPipeline запускает пайплайн по имени.
func (o *Orchestrator) RunPipeline(ctx context.Context, name, id string) (*Result, error) {
	p, ok := o.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPipeline, name)
	}
	return o.Run(ctx, p, id)
}

// EnrichJob обогащает вакансию.
func (o *Orchestrator) EnrichJob(ctx context.Context, id string) (*Result, error) {
	return o.RunPipeline(ctx, PipelineJob, id)
}

// EnrichCandidate обогащает кандидата.
func (o *Orchestrator) EnrichCandidate(ctx context.Context, id string) (*Result, error) {
	return o.RunPipeline(ctx, PipelineCandidate, id)
}

// Run выполняет пайплайн для записи id.
//
// Возвращает ошибку только для терминальных состояний (см. errors.go).
// Ошибки отдельных операций находятся в Result.Outcome.Errors.
func (o *Orchestrator) Run(ctx context.Context, p *engine.Pipeline, id string) (*Result, error) {
	state := NewRunState(p, id)
	logger := telemetry.WithRunID(o.logger, state.RunID.String())
	logger = telemetry.WithRecordID(telemetry.WithPipeline(logger, p.Name), id)

	logger.Info("run started")

	if err := o.run(ctx, state, logger); err != nil {
		logger.Error("run failed",
			"error", err,
			"writes", state.Writes,
			"duration", time.Since(state.StartedAt),
		)
		o.runFinished(p.Name, domain.RunStatusFailed)
		return nil, err
	}

	result := state.Result()
	stats := state.Stats()
	logger.Info("run finished",
		"status", result.Status(),
		"updated", result.Updated,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"writes", stats.Writes,
		"persist_failures", stats.PersistFailures,
		"duration", result.Duration,
	)
	o.runFinished(p.Name, result.Status())

	return result, nil
}

// run проходит состояния запуска.
func (o *Orchestrator) run(ctx context.Context, state *RunState, logger *slog.Logger) error {
	p := state.Pipeline

	// 1. Fetch
	text, err := o.fetch(ctx, state)
	if err != nil {
		return err
	}
	logger.Debug("record loaded", "text_len", len(text))

	// 2. Resolve
	ops, err := o.resolve(ctx, p)
	if err != nil {
		return err
	}
	logger.Debug("operations resolved", "count", len(ops))

	in := &engine.Inputs{
		Text:     text,
		Record:   state.Record,
		Related:  domain.Record{},
		Required: []string{},
	}

	// 3. SeedStage
	if p.Seed != nil {
		o.runSeed(ctx, state, in, ops, logger)
	}

	// 4. DependentStage
	if p.Related != nil {
		in.Related = o.fetchRelated(ctx, state, logger)
	}

	state.DependentsStartedAt = time.Now()
	logger.Info("dependent stage started",
		"operations", len(p.Dependents),
		"required_items", len(in.Required),
	)

	exec := &engine.StageExecutor{Pipeline: p.Name, Limit: p.Concurrency, Observer: o.observer}
	out := exec.Run(ctx, engine.Calls(p.Dependents, in, ops))
	state.Outcome.Absorb(out)
	logOutcome(logger, out)

	// 5. Terminal: несохранённый результат seed уходит вместе с зависимыми
	changed := append(state.Pending, engine.Merge(state.Record, p.Dependents, out)...)
	if len(changed) == 0 {
		logger.Debug("nothing to persist after dependent stage")
		return nil
	}

	logger.Info("persisting updates", "fields", changed)
	if err := o.persist(ctx, state, StageDependents); err != nil {
		return err
	}
	state.Pending = nil
	return nil
}

// fetch загружает основную запись и её исходный текст.
func (o *Orchestrator) fetch(ctx context.Context, state *RunState) (string, error) {
	p := state.Pipeline

	if strings.TrimSpace(state.RecordID) == "" {
		return "", ErrMissingID
	}

	store, ok := o.stores[p.Kind]
	if !ok {
		return "", fmt.Errorf("%w: no store for %s records", ErrUnknownPipeline, p.Kind)
	}

	record, err := store.Get(ctx, state.RecordID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("%w: %s %q", ErrNotFound, p.Kind, state.RecordID)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if record.ID() == "" {
		record[domain.FieldID] = state.RecordID
	}
	state.Record = record

	text := p.Text(record)
	if text == "" {
		return "", fmt.Errorf("%w: %s %q", ErrEmptyInput, p.Kind, state.RecordID)
	}
	return text, nil
}

// resolve находит все операции пайплайна в каталоге.
func (o *Orchestrator) resolve(ctx context.Context, p *engine.Pipeline) (map[string]engine.Operation, error) {
	if o.catalog == nil {
		return nil, fmt.Errorf("%w: catalog is not configured", ErrOperationNotResolved)
	}

	names := p.ToolNames()
	ops, err := o.catalog.Lookup(ctx, names...)
	if err != nil {
		if errors.Is(err, ErrOperationNotResolved) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrOperationNotResolved, err)
	}

	var missing []string
	for _, name := range names {
		if ops[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotResolved, strings.Join(missing, ", "))
	}

	return ops, nil
}

// runSeed выполняет seed-операцию и сохраняет её результат.
// Ошибка сохранения не прерывает запуск: поля остаются в рабочей копии
// и сохраняются после зависимой стадии.
func (o *Orchestrator) runSeed(ctx context.Context, state *RunState, in *engine.Inputs, ops map[string]engine.Operation, logger *slog.Logger) {
	p := state.Pipeline
	seed := []engine.OperationSpec{*p.Seed}

	logger.Info("seed stage started", "operation", p.Seed.Key)

	exec := &engine.StageExecutor{Pipeline: p.Name, Limit: 1, Observer: o.observer}
	out := exec.Run(ctx, engine.Calls(seed, in, ops))
	state.Outcome.Absorb(out)
	state.SeedResolvedAt = time.Now()
	logOutcome(logger, out)

	value, ok := out.Results[p.Seed.Key]
	if !ok {
		logger.Warn("seed failed, dependents run with empty projection",
			"operation", p.Seed.Key,
			"error", out.Errors[p.Seed.Key],
		)
		return
	}

	in.Required = engine.RequiredItems(value)
	logger.Debug("seed projected",
		"shape", engine.ClassifySkills(value).String(),
		"required_items", len(in.Required),
	)

	changed := engine.Merge(state.Record, seed, out)
	if len(changed) == 0 {
		return
	}

	logger.Info("persisting seed result", "fields", changed)
	if err := o.persist(ctx, state, StageSeed); err != nil {
		state.PersistFailures++
		state.Pending = changed
		logger.Error("seed result not persisted, deferring to dependent stage",
			"fields", changed,
			"error", err,
		)
	}
}

// fetchRelated загружает связанную запись только для чтения.
// Отсутствие или ошибка чтения дают пустую запись.
func (o *Orchestrator) fetchRelated(ctx context.Context, state *RunState, logger *slog.Logger) domain.Record {
	rel := state.Pipeline.Related

	relID := strings.TrimSpace(state.Record.String(rel.Field))
	if relID == "" {
		logger.Debug("no related record", "field", rel.Field)
		return domain.Record{}
	}

	store, ok := o.stores[rel.Kind]
	if !ok {
		logger.Warn("no store for related records", "kind", rel.Kind)
		return domain.Record{}
	}

	related, err := store.Get(ctx, relID)
	if err != nil {
		logger.Warn("related record unavailable, using empty",
			"related_id", relID,
			"error", err,
		)
		return domain.Record{}
	}

	logger.Debug("related record loaded", "related_id", relID)
	return related
}

// persist сохраняет рабочую копию записи.
func (o *Orchestrator) persist(ctx context.Context, state *RunState, stage string) error {
	p := state.Pipeline

	store, ok := o.stores[p.Kind]
	if !ok {
		return fmt.Errorf("%w: no store for %s records", ErrPersistFailed, p.Kind)
	}

	if err := store.Put(ctx, state.Record); err != nil {
		return fmt.Errorf("%w: %s stage: %v", ErrPersistFailed, stage, err)
	}

	state.Writes++
	state.Updated = true
	if o.observer != nil {
		o.observer.RecordWritten(p.Name, stage)
	}
	return nil
}

func (o *Orchestrator) runFinished(pipeline string, status domain.RunStatus) {
	if o.observer != nil {
		o.observer.RunFinished(pipeline, status)
	}
}

func logOutcome(logger *slog.Logger, out *engine.Outcome) {
	for name := range out.Results {
		logger.Info("operation completed", "operation", name)
	}
	for name, msg := range out.Errors {
		logger.Error("operation failed", "operation", name, "error", msg)
	}
}
