// Package cli реализует инструмент командной строки для API обогащения.
//
// # Обзор
//
// CLI работает через HTTP и не импортирует внутренние пакеты системы.
// Используется для ручного запуска пайплайнов и просмотра документов.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент API. Инкапсулирует запросы, разбор ответов
// (DataResponse, ErrorResponse) и ошибки (*APIError).
//
//	client := cli.NewClient("http://localhost:8080")
//	res, err := client.Enrich(cli.ResourceJobs, "j1")
//
// ## Output
//
// Форматирование вывода (--output):
//   - table (text/tabwriter) — по умолчанию
//   - json
//   - yaml (gopkg.in/yaml.v3)
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr:
// enricher job get j1 --output json | jq .
//
// ## Commands
//
//   - job:       enrich [--async], get, put --file
//   - candidate: enrich [--async], get, put --file
//
// Группы создаются фабриками (NewJobCmd, NewCandidateCmd), принимающими
// clientFn и outputFn — замыкания для ленивого создания Client и Output
// после парсинга PersistentFlags.
package cli
