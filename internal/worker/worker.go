package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
)

const defaultPrefetch = 4

// Runner запускает пайплайн по имени (реализуется *orchestrator.Orchestrator).
type Runner interface {
	RunPipeline(ctx context.Context, pipeline, id string) (*orchestrator.Result, error)
}

// Completer публикует итог запуска (реализуется *mq.Publisher).
type Completer interface {
	PublishEnrichCompleted(ctx context.Context, payload mq.EnrichCompletedPayload) error
}

// Worker обрабатывает запросы обогащения из очереди enrich.requests.
//
// Worker не хранит состояния: несколько экземпляров потребляют
// из одной очереди, параллелизм одного экземпляра равен prefetch.
type Worker struct {
	runner    Runner
	completer Completer
	conn      *mq.Connection
	prefetch  int

	consumer *mq.Consumer

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	// Runner — оркестратор.
	Runner Runner

	// Completer — публикация enrich.completed (опционально).
	Completer Completer

	// Conn — соединение RabbitMQ для consumer.
	Conn *mq.Connection

	// Prefetch — сообщений в обработке одновременно (default: 4).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		runner:    cfg.Runner,
		completer: cfg.Completer,
		conn:      cfg.Conn,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает consumer очереди enrich.requests.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker", "prefetch", w.prefetch)

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    mq.QueueEnrichRequests,
		Handler:  w.HandleRequest,
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("request consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и дожидается текущих запусков.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}
