package engine

import (
	"fmt"
	"strings"

	"github.com/shaiso/Enricher/internal/domain"
)

// Inputs — всё, из чего строятся входные данные операций.
type Inputs struct {
	// Text — исходный текст записи (jd_text/text или resume_text).
	Text string

	// Record — рабочая копия записи (с результатом seed-стадии, если он есть).
	Record domain.Record

	// Related — связанная запись (вакансия кандидата). Пустая, если не найдена.
	Related domain.Record

	// Required — проекция обязательных навыков из результата seed-стадии.
	Required []string
}

// OperationSpec описывает одну операцию пайплайна.
type OperationSpec struct {
	// Key — ключ результата в Outcome.
	Key string

	// Tool — имя операции в каталоге.
	Tool string

	// Build строит входные данные операции.
	Build func(in *Inputs) map[string]any

	// Field — поле записи, куда сохраняется результат.
	Field string

	// Unwrap — если задано и результат является объектом,
	// в запись сохраняется только его поле Unwrap.
	Unwrap string
}

// Relation описывает связанную запись, читаемую перед зависимой стадией.
type Relation struct {
	// Field — поле записи с ID связанной записи.
	Field string

	// Kind — тип связанной записи.
	Kind domain.Kind
}

// Pipeline — описание обогащения одного типа записей.
//
// Seed (необязательный) выполняется первым; его результат сохраняется сразу
// и проецируется в Inputs.Required. Dependents выполняются после seed
// параллельно, не более Concurrency одновременно.
type Pipeline struct {
	Name        string
	Kind        domain.Kind
	TextFields  []string
	Related     *Relation
	Seed        *OperationSpec
	Dependents  []OperationSpec
	Concurrency int
}

// Validate проверяет описание пайплайна.
func (p *Pipeline) Validate() error {
	if len(p.TextFields) == 0 {
		return NewValidationError("", "text_fields", "pipeline "+p.Name+" has no text fields", ErrNoTextFields)
	}
	if len(p.Dependents) == 0 {
		return NewValidationError("", "dependents", "pipeline "+p.Name+" has no dependent operations", ErrEmptyPipeline)
	}
	if p.Concurrency < 1 {
		return NewValidationError("", "concurrency", fmt.Sprintf("concurrency %d is not positive", p.Concurrency), ErrInvalidConcurrency)
	}
	if p.Related != nil && p.Related.Field == "" {
		return NewValidationError("", "related", "relation has no field", ErrMissingField)
	}

	keys := make(map[string]bool)
	fields := make(map[string]bool)

	for _, spec := range p.Specs() {
		if spec.Key == "" {
			return NewValidationError("", "key", "operation key is required", ErrEmptyOperationKey)
		}
		if keys[spec.Key] {
			return NewValidationError(spec.Key, "key", "duplicate operation key", ErrDuplicateOperation)
		}
		keys[spec.Key] = true

		if spec.Tool == "" {
			return NewValidationError(spec.Key, "tool", "tool name is required", ErrEmptyToolName)
		}
		if spec.Build == nil {
			return NewValidationError(spec.Key, "build", "input builder is required", ErrMissingBuilder)
		}
		if spec.Field == "" {
			return NewValidationError(spec.Key, "field", "target field is required", ErrMissingField)
		}
		if fields[spec.Field] {
			return NewValidationError(spec.Key, "field", "field "+spec.Field+" is already written by another operation", ErrDuplicateField)
		}
		fields[spec.Field] = true
	}

	return nil
}

// Specs возвращает все операции пайплайна: seed (если есть), затем зависимые.
func (p *Pipeline) Specs() []OperationSpec {
	specs := make([]OperationSpec, 0, len(p.Dependents)+1)
	if p.Seed != nil {
		specs = append(specs, *p.Seed)
	}
	return append(specs, p.Dependents...)
}

// ToolNames возвращает имена всех операций пайплайна в каталоге.
func (p *Pipeline) ToolNames() []string {
	specs := p.Specs()
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Tool)
	}
	return names
}

// Text возвращает исходный текст записи по первому непустому текстовому полю.
func (p *Pipeline) Text(r domain.Record) string {
	for _, field := range p.TextFields {
		if s := r.String(field); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Calls строит вызовы для набора операций.
// ops — операции, найденные в каталоге, по имени инструмента.
func Calls(specs []OperationSpec, in *Inputs, ops map[string]Operation) []Call {
	calls := make([]Call, 0, len(specs))
	for _, spec := range specs {
		calls = append(calls, Call{
			Name:      spec.Key,
			Payload:   spec.Build(in),
			Operation: ops[spec.Tool],
		})
	}
	return calls
}
