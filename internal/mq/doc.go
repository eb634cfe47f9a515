// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - enrich.requested — запись ожидает запуска пайплайна
//   - enrich.completed — пайплайн завершён, payload содержит ответ
//
// Exchanges:
//   - enricher.enrich — запросы и события обогащения
//   - enricher.dlq    — dead letter queue
package mq
