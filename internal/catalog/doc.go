// Package catalog находит операции обогащения по имени.
//
// # Реализации
//
// Registry — in-memory реестр engine.Operation. Используется для HTTP
// endpoints (NewHTTPRegistry) и в тестах.
//
// MCPCatalog — инструменты MCP шлюза. Lookup читает список инструментов
// при каждом запуске пайплайна, Invoke вызывает инструмент через CallTool:
//
//	cat := catalog.NewMCPCatalog(catalog.MCPConfig{
//	    URL:         cfg.Catalog.GatewayURL,
//	    TokenSource: catalog.NewTokenSource(ctx, tokenCfg),
//	})
//	ops, err := cat.Lookup(ctx, "extractskills___jd_extract_jd_skills")
//
// Оба каталога возвращают ErrOperationNotResolved со списком имён,
// которых нет в каталоге.
//
// # Авторизация
//
// TokenConfig: статический токен или OAuth2 client credentials
// (golang.org/x/oauth2/clientcredentials). Токен передаётся как
// "Authorization: Bearer ...".
//
// # Файлы пакета
//
//   - registry.go — Registry
//   - mcp.go      — MCPCatalog, MCPOperation
//   - http.go     — HTTPOperation, HTTPError
//   - token.go    — источники токенов
//   - errors.go   — ошибки
package catalog
