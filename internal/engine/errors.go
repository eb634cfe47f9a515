package engine

import "errors"

// Ошибки операций стадии. Записываются в Outcome.Errors и не прерывают запуск.
var (
	// ErrRemoteCall — удалённый вызов операции вернул ошибку.
	ErrRemoteCall = errors.New("remote call failed")

	// ErrUnparsableResult — ответ операции не удалось разобрать как JSON.
	ErrUnparsableResult = errors.New("unparsable result")

	// ErrOperationPanic — операция завершилась паникой.
	ErrOperationPanic = errors.New("operation panicked")
)

// Ошибки валидации пайплайна.
var (
	// ErrEmptyPipeline — пайплайн не содержит операций зависимой стадии.
	ErrEmptyPipeline = errors.New("pipeline has no dependent operations")

	// ErrEmptyOperationKey — операция не имеет ключа результата.
	ErrEmptyOperationKey = errors.New("operation has empty key")

	// ErrEmptyToolName — операция не привязана к имени в каталоге.
	ErrEmptyToolName = errors.New("operation has empty tool name")

	// ErrDuplicateOperation — несколько операций с одинаковым ключом.
	ErrDuplicateOperation = errors.New("duplicate operation key")

	// ErrMissingBuilder — операция не умеет строить входные данные.
	ErrMissingBuilder = errors.New("operation has no input builder")

	// ErrMissingField — у операции нет поля для сохранения результата.
	ErrMissingField = errors.New("operation has no target field")

	// ErrDuplicateField — две операции пишут в одно поле записи.
	ErrDuplicateField = errors.New("duplicate target field")

	// ErrInvalidConcurrency — граница параллелизма должна быть положительной.
	ErrInvalidConcurrency = errors.New("concurrency must be positive")

	// ErrNoTextFields — пайплайн не знает, где искать исходный текст.
	ErrNoTextFields = errors.New("pipeline has no text fields")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Operation string // ключ операции, где произошла ошибка
	Field     string // поле, вызвавшее ошибку
	Message   string // описание ошибки
	Err       error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Operation != "" {
		return "operation " + e.Operation + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(operation, field, message string, err error) *ValidationError {
	return &ValidationError{
		Operation: operation,
		Field:     field,
		Message:   message,
		Err:       err,
	}
}
