package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome — агрегированный результат стадии или всего запуска.
//
// Каждое запущенное имя операции присутствует ровно в одной из карт.
// Имена, которые не запускались, отсутствуют в обеих.
type Outcome struct {
	Results map[string]any    `json:"results"`
	Errors  map[string]string `json:"errors"`
}

// NewOutcome создаёт пустой результат.
func NewOutcome() *Outcome {
	return &Outcome{
		Results: make(map[string]any),
		Errors:  make(map[string]string),
	}
}

// Succeeded проверяет, что операция завершилась успешно.
func (o *Outcome) Succeeded(name string) bool {
	_, ok := o.Results[name]
	return ok
}

// Absorb переносит результаты и ошибки другой стадии.
func (o *Outcome) Absorb(other *Outcome) {
	if other == nil {
		return
	}
	for k, v := range other.Results {
		o.Results[k] = v
	}
	for k, v := range other.Errors {
		o.Errors[k] = v
	}
}

// Observer получает события запуска операций (метрики, трассировка).
type Observer interface {
	OperationStarted(pipeline, operation string)
	OperationFinished(pipeline, operation string, duration time.Duration, err error)
}

// StageExecutor выполняет операции стадии с ограниченным параллелизмом.
//
// Операции запускаются в порядке среза; одновременно выполняется не более
// Limit вызовов. Ошибка одной операции не отменяет соседние. Run всегда
// дожидается завершения всех запущенных вызовов.
type StageExecutor struct {
	// Pipeline — имя пайплайна для наблюдателя.
	Pipeline string

	// Limit — максимальное число одновременных вызовов (>= 1).
	Limit int

	// Observer — необязательный наблюдатель.
	Observer Observer
}

// slot — результат одного вызова. Каждая горутина пишет только в свой слот.
type slot struct {
	value any
	err   error
}

// Run выполняет вызовы и возвращает агрегированный результат.
func (e *StageExecutor) Run(ctx context.Context, calls []Call) *Outcome {
	out := NewOutcome()
	if len(calls) == 0 {
		return out
	}

	limit := e.Limit
	if limit < 1 {
		limit = 1
	}

	slots := make([]slot, len(calls))

	// errgroup без контекста: ошибки фиксируются в слотах, а не в Wait,
	// поэтому соседние вызовы не отменяются.
	var g errgroup.Group
	g.SetLimit(limit)

	for i := range calls {
		call := calls[i]
		g.Go(func() error {
			value, err := e.invoke(ctx, call)
			slots[i] = slot{value: value, err: err}
			return nil
		})
	}

	_ = g.Wait()

	for i, call := range calls {
		if slots[i].err != nil {
			out.Errors[call.Name] = slots[i].err.Error()
			continue
		}
		out.Results[call.Name] = slots[i].value
	}

	return out
}

// invoke выполняет один вызов: удалённая операция, затем разбор ответа.
func (e *StageExecutor) invoke(ctx context.Context, call Call) (value any, err error) {
	started := time.Now()
	if e.Observer != nil {
		e.Observer.OperationStarted(e.Pipeline, call.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %w: %v", ErrRemoteCall, ErrOperationPanic, r)
		}
		if e.Observer != nil {
			e.Observer.OperationFinished(e.Pipeline, call.Name, time.Since(started), err)
		}
	}()

	if call.Operation == nil {
		return nil, fmt.Errorf("%w: operation %q is not bound", ErrRemoteCall, call.Name)
	}

	raw, err := call.Operation.Invoke(ctx, call.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
	}

	return ParseResult(raw)
}
