// Package orchestrator выполняет пайплайны обогащения записей.
//
// Orchestrator отвечает за:
//   - Загрузку записи и проверку исходного текста
//   - Поиск всех операций пайплайна в каталоге (один раз за запуск)
//   - Seed-стадию и немедленное сохранение её результата
//   - Чтение связанной записи (вакансия кандидата)
//   - Зависимую стадию с ограниченным параллелизмом
//   - Перенос результатов в запись и одно финальное сохранение
//
// Запуски не сохраняются: каждый Run существует только в памяти.
// Повторов нет — ошибки операций возвращаются в Result.Outcome.Errors.
package orchestrator
