package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
)

const (
	defaultBatchSize = 100
	defaultCooldown  = time.Hour
)

// Lister находит записи без поля (*repo.RecordRepo).
type Lister interface {
	ListMissing(ctx context.Context, field string, limit int) ([]string, error)
}

// Requester публикует запросы обогащения (*mq.Publisher).
type Requester interface {
	PublishEnrichRequested(ctx context.Context, payload mq.EnrichRequestedPayload) (string, error)
}

// Leader — блокировка лидера (*repo.AdvisoryLock).
type Leader interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Target — записи одного пайплайна, которые ещё не обогащены.
type Target struct {
	// Pipeline — имя пайплайна для запроса.
	Pipeline string

	// Records — хранилище записей пайплайна.
	Records Lister

	// Field — поле, отсутствие которого означает «не обогащена».
	Field string
}

// DefaultTargets — вакансии без skills и кандидаты без resume_summary.
func DefaultTargets(jobs, candidates Lister) []Target {
	return []Target{
		{Pipeline: orchestrator.PipelineJob, Records: jobs, Field: orchestrator.OpJobSkills},
		{Pipeline: orchestrator.PipelineCandidate, Records: candidates, Field: orchestrator.OpCandidateResumeSummary},
	}
}

// Scheduler — планировщик дообогащения (backfill).
type Scheduler struct {
	targets   []Target
	requester Requester
	leader    Leader
	logger    *slog.Logger
	batchSize int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	requested map[string]time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Targets   []Target
	Requester Requester

	// Leader — если задан, тик выполняется только владельцем блокировки.
	Leader Leader

	Logger *slog.Logger

	// BatchSize — записей каждого пайплайна за тик (default: 100).
	BatchSize int

	// Cooldown — запись не запрашивается повторно раньше (default: 1h).
	Cooldown time.Duration
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		targets:   cfg.Targets,
		requester: cfg.Requester,
		leader:    cfg.Leader,
		logger:    logger,
		batchSize: batchSize,
		cooldown:  cooldown,
		now:       time.Now,
		requested: make(map[string]time.Time),
	}
}

// Tick выполняет один тик планировщика.
//
//  1. Для каждого Target находит до batchSize записей без Field
//  2. Пропускает записи, запрошенные в пределах cooldown
//  3. Публикует enrich.requested
//
// Ошибки одной записи или одного Target не блокируют остальные.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	s.forget(now)

	var errs []error
	var found, published int

	for _, target := range s.targets {
		ids, err := target.Records.ListMissing(ctx, target.Field, s.batchSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s records missing %s: %w", target.Pipeline, target.Field, err))
			continue
		}
		found += len(ids)

		for _, id := range ids {
			if !s.due(target.Pipeline, id, now) {
				continue
			}

			_, err := s.requester.PublishEnrichRequested(ctx, mq.EnrichRequestedPayload{
				Pipeline: target.Pipeline,
				ID:       id,
				Source:   mq.SourceScheduler,
			})
			if err != nil {
				s.logger.Error("failed to publish enrich request",
					"pipeline", target.Pipeline,
					"record_id", id,
					"error", err,
				)
				continue
			}

			s.markRequested(target.Pipeline, id, now)
			published++
		}
	}

	if found > 0 || len(errs) > 0 {
		s.logger.Info("scheduler tick completed",
			"found", found,
			"published", published,
			"errors", len(errs),
		)
	}

	return errors.Join(errs...)
}

// Run выполняет Tick по cron-выражению до отмены ctx.
// С Leader тик выполняется только владельцем блокировки; при выходе
// блокировка освобождается.
func (s *Scheduler) Run(ctx context.Context, cronExpr string) error {
	logger := cronLogger{logger: s.logger}

	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := c.AddFunc(cronExpr, func() { s.tickAsLeader(ctx) }); err != nil {
		return fmt.Errorf("schedule backfill %q: %w", cronExpr, err)
	}

	s.logger.Info("scheduler started", "cron", cronExpr, "batch_size", s.batchSize)
	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()

	if s.leader != nil {
		if err := s.leader.Release(context.Background()); err != nil {
			s.logger.Warn("failed to release leader lock", "error", err)
		}
	}

	s.logger.Info("scheduler stopped")
	return nil
}

// tickAsLeader выполняет Tick, если этот экземпляр — лидер.
func (s *Scheduler) tickAsLeader(ctx context.Context) {
	if s.leader != nil {
		ok, err := s.leader.TryAcquire(ctx)
		if err != nil {
			s.logger.Error("leader lock error", "error", err)
			return
		}
		if !ok {
			s.logger.Debug("not a leader, skipping tick")
			return
		}
	}

	if err := s.Tick(ctx); err != nil {
		s.logger.Error("scheduler tick failed", "error", err)
	}
}

func requestKey(pipeline, id string) string {
	return pipeline + "/" + id
}

// due проверяет, что запись не запрашивалась в пределах cooldown.
func (s *Scheduler) due(pipeline, id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	at, ok := s.requested[requestKey(pipeline, id)]
	return !ok || now.Sub(at) >= s.cooldown
}

func (s *Scheduler) markRequested(pipeline, id string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested[requestKey(pipeline, id)] = now
}

// forget удаляет отметки старше cooldown.
func (s *Scheduler) forget(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, at := range s.requested {
		if now.Sub(at) >= s.cooldown {
			delete(s.requested, key)
		}
	}
}
