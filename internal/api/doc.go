// Package api содержит HTTP API сервер обогащения.
//
// Структура:
//   - handler.go        — Handler с DI (оркестратор, хранилища, publisher, logger)
//   - routes.go         — регистрация маршрутов
//   - middleware.go     — middleware (recovery, logging, metrics)
//   - response.go       — унифицированные JSON-ответы и обработка ошибок
//   - dto.go            — Data Transfer Objects
//   - enrich_handler.go — запуск пайплайнов (sync и async)
//   - record_handler.go — чтение и запись документов, /healthz
package api
