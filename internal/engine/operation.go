package engine

import "context"

// Operation — удалённая операция обогащения, найденная в каталоге по имени.
//
// Реализации: catalog.MCPOperation (MCP tool), catalog.HTTPOperation,
// функции в тестах через OperationFunc.
type Operation interface {
	// Name возвращает имя операции в каталоге.
	Name() string

	// Invoke выполняет вызов и возвращает сырой текст ответа.
	// Текст ожидается в виде JSON; разбор выполняет StageExecutor.
	Invoke(ctx context.Context, payload map[string]any) (string, error)
}

// OperationFunc — адаптер функции к интерфейсу Operation.
type OperationFunc struct {
	ToolName string
	Fn       func(ctx context.Context, payload map[string]any) (string, error)
}

// NewOperationFunc создаёт Operation из функции.
func NewOperationFunc(name string, fn func(ctx context.Context, payload map[string]any) (string, error)) *OperationFunc {
	return &OperationFunc{ToolName: name, Fn: fn}
}

// Name возвращает имя операции.
func (o *OperationFunc) Name() string {
	return o.ToolName
}

// Invoke вызывает функцию.
func (o *OperationFunc) Invoke(ctx context.Context, payload map[string]any) (string, error) {
	return o.Fn(ctx, payload)
}

// Call — одна операция, подготовленная к запуску в стадии.
type Call struct {
	// Name — ключ результата в Outcome.
	Name string

	// Payload — входные данные операции.
	Payload map[string]any

	// Operation — удалённая операция.
	Operation Operation
}
