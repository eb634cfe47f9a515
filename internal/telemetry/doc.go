// Package telemetry обеспечивает наблюдаемость сервисов обогащения.
//
// Включает:
//   - logging.go — structured logging через slog (LOG_LEVEL, LOG_FORMAT)
//   - metrics.go — Prometheus метрики операций, запусков и записей
//
// Metrics передаётся оркестратору как Observer; каждый бинарник
// отдаёт метрики на /metrics.
package telemetry
