package worker

import (
	"context"
	"fmt"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
	"github.com/shaiso/Enricher/internal/telemetry"
)

// HandleRequest обрабатывает сообщение enrich.requested.
//
// Возвращённая ошибка отправляет сообщение в DLQ:
//   - некорректный payload или неизвестный пайплайн
//   - инфраструктурные ошибки (каталог, хранилище)
//
// Ошибки самой записи (нет id, не найдена, нет текста) подтверждаются
// с событием enrich.completed, содержащим error.
func (w *Worker) HandleRequest(ctx context.Context, msg *mq.Message) error {
	if msg.Type != mq.MessageTypeEnrichRequested {
		return fmt.Errorf("%w: type %q", ErrMalformedRequest, msg.Type)
	}

	payload, err := mq.ParsePayload[mq.EnrichRequestedPayload](msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if payload.Pipeline == "" {
		return fmt.Errorf("%w: pipeline is required", ErrMalformedRequest)
	}

	logger := telemetry.WithRecordID(telemetry.WithPipeline(w.logger, payload.Pipeline), payload.ID)
	logger.Debug("received enrich request", "message_id", msg.ID, "source", payload.Source)

	completion := mq.EnrichCompletedPayload{
		RequestID: msg.ID,
		Pipeline:  payload.Pipeline,
	}

	result, err := w.runner.RunPipeline(ctx, payload.Pipeline, payload.ID)
	switch {
	case err == nil:
		completion.RunID = result.RunID.String()
		completion.Response = result.Response()

	case orchestrator.IsRecordError(err):
		logger.Warn("enrich request rejected", "error", err)
		completion.Response = domain.ErrorResponse(err)

	default:
		return fmt.Errorf("run %s %q: %w", payload.Pipeline, payload.ID, err)
	}
	status := completion.Response.Status()
	completion.Status = string(status)
	if !status.IsTerminalFailure() {
		logger.Info("enrich request completed", "run_id", completion.RunID, "status", status)
	}

	return w.complete(ctx, completion)
}

// complete публикует enrich.completed, если Completer настроен.
func (w *Worker) complete(ctx context.Context, payload mq.EnrichCompletedPayload) error {
	if w.completer == nil {
		return nil
	}
	if err := w.completer.PublishEnrichCompleted(ctx, payload); err != nil {
		// Запись уже сохранена, сообщение подтверждается
		w.logger.Error("failed to publish completion",
			"request_id", payload.RequestID,
			"pipeline", payload.Pipeline,
			"error", err,
		)
	}
	return nil
}
