package catalog

import "errors"

// Ошибки каталога операций.
var (
	// ErrOperationNotFound — операция не зарегистрирована в реестре.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrOperationNotResolved — часть операций пайплайна отсутствует в каталоге.
	ErrOperationNotResolved = errors.New("operation not resolved")

	// ErrToolError — инструмент вернул результат с признаком ошибки.
	ErrToolError = errors.New("tool returned error")

	// ErrNoGateway — адрес MCP шлюза не задан.
	ErrNoGateway = errors.New("catalog gateway url is not configured")
)
