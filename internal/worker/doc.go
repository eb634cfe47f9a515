// Package worker выполняет запросы обогащения из RabbitMQ.
//
// # Обзор
//
// Worker — stateless компонент, который:
//
//   - Получает enrich.requested из очереди enrich.requests
//   - Запускает пайплайн через оркестратор (Runner)
//   - Публикует enrich.completed с выходным контрактом пайплайна
//
// Workers масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди. Параллелизм экземпляра равен prefetch.
//
//	w := worker.New(worker.Config{
//	    Runner:    orch,
//	    Completer: publisher,
//	    Conn:      mqConn,
//	    Prefetch:  cfg.Worker.Prefetch,
//	    Logger:    logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Ошибки
//
// Повторов нет: сообщение либо подтверждается, либо уходит в DLQ.
//
//   - Ошибки записи (orchestrator.IsRecordError) — ack + enrich.completed с error
//   - Некорректный payload, неизвестный пайплайн — DLQ
//   - Каталог или хранилище недоступны — DLQ
package worker
