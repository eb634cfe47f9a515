// Package engine содержит ядро обогащения записей.
//
// Включает:
//   - operation.go  — интерфейс удалённой операции и Call
//   - stage.go      — StageExecutor: ограниченный параллельный запуск стадии
//   - parse.go      — разбор ответов операций с восстановлением JSON
//   - projection.go — проекция обязательных навыков из результата извлечения
//   - derive.go     — производные входы операций из записей
//   - pipeline.go   — описание пайплайна и его валидация
//   - merge.go      — перенос результатов в запись
//
// Engine не знает о хранилище и каталоге: порядок стадий и сохранение
// определяет orchestrator.
package engine
