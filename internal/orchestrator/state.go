package orchestrator

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
)

// RunState — состояние одного запуска пайплайна в памяти.
//
// Создаётся в начале Run и живёт только до его завершения:
// запуски не сохраняются и не восстанавливаются.
type RunState struct {
	// RunID — идентификатор запуска (для логов и событий).
	RunID uuid.UUID

	// Pipeline — выполняемый пайплайн.
	Pipeline *engine.Pipeline

	// RecordID — идентификатор основной записи.
	RecordID string

	// Record — рабочая копия записи.
	Record domain.Record

	// Outcome — результаты и ошибки всех стадий.
	Outcome *engine.Outcome

	// Updated — хотя бы один результат сохранён в запись.
	Updated bool

	// Writes — количество сохранений записи.
	Writes int

	// Pending — поля, слитые в рабочую копию, но ещё не сохранённые
	// (сохранение seed-стадии не удалось).
	Pending []string

	// PersistFailures — неудачные сохранения, после которых запуск продолжился.
	PersistFailures int

	StartedAt           time.Time
	SeedResolvedAt      time.Time
	DependentsStartedAt time.Time
}

// NewRunState создаёт состояние запуска.
func NewRunState(p *engine.Pipeline, id string) *RunState {
	return &RunState{
		RunID:     uuid.New(),
		Pipeline:  p,
		RecordID:  id,
		Outcome:   engine.NewOutcome(),
		StartedAt: time.Now(),
	}
}

// Result возвращает итог запуска.
func (s *RunState) Result() *Result {
	return &Result{
		RunID:    s.RunID,
		Pipeline: s.Pipeline.Name,
		ID:       s.RecordID,
		Updated:  s.Updated,
		Outcome:  s.Outcome,
		Writes:   s.Writes,
		Duration: time.Since(s.StartedAt),
	}
}

// Stats возвращает статистику запуска.
func (s *RunState) Stats() RunStats {
	return RunStats{
		Succeeded:       len(s.Outcome.Results),
		Failed:          len(s.Outcome.Errors),
		Writes:          s.Writes,
		PersistFailures: s.PersistFailures,
	}
}

// RunStats — статистика запуска.
type RunStats struct {
	Succeeded       int
	Failed          int
	Writes          int
	PersistFailures int
}

// Result — итог успешно завершённого запуска.
//
// Ошибки отдельных операций не делают запуск неуспешным:
// они перечислены в Outcome.Errors.
type Result struct {
	RunID    uuid.UUID
	Pipeline string
	ID       string
	Updated  bool
	Outcome  *engine.Outcome
	Writes   int
	Duration time.Duration
}

// Response возвращает выходной контракт пайплайна.
func (r *Result) Response() domain.Response {
	return domain.Response{
		ID:      r.ID,
		Updated: r.Updated,
		Results: r.Outcome.Results,
		Errors:  r.Outcome.Errors,
	}
}

// Status возвращает итоговый статус запуска.
func (r *Result) Status() domain.RunStatus {
	return r.Response().Status()
}
