package domain

// RunStatus — итог одного запуска пайплайна.
//
//	SUCCEEDED — все операции успешны
//	PARTIAL   — часть операций завершилась ошибкой
//	FAILED    — терминальная ошибка до запуска стадий
type RunStatus string

const (
	// RunStatusSucceeded — все запущенные операции успешны.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusPartial — есть и результаты, и ошибки операций.
	RunStatusPartial RunStatus = "PARTIAL"

	// RunStatusFailed — запуск прерван терминальной ошибкой.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminalFailure возвращает true, если стадии не запускались.
func (s RunStatus) IsTerminalFailure() bool {
	return s == RunStatusFailed
}

// OperationStatus — статус одной операции стадии.
type OperationStatus string

const (
	// OperationStatusSucceeded — операция вернула разобранный результат.
	OperationStatusSucceeded OperationStatus = "SUCCEEDED"

	// OperationStatusFailed — удалённый вызов или разбор ответа не удался.
	OperationStatusFailed OperationStatus = "FAILED"
)
