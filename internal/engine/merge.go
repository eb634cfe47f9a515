package engine

import "github.com/shaiso/Enricher/internal/domain"

// Merge переносит успешные результаты операций в запись.
//
// Перезаписываются только поля операций из outcome.Results; поля операций
// с ошибкой сохраняют прежнее значение. Возвращает список изменённых полей
// в порядке specs.
func Merge(record domain.Record, specs []OperationSpec, outcome *Outcome) []string {
	if outcome == nil {
		return nil
	}

	var changed []string
	for _, spec := range specs {
		value, ok := outcome.Results[spec.Key]
		if !ok {
			continue
		}

		stored, ok := mergeValue(spec, value)
		if !ok {
			continue
		}

		record[spec.Field] = stored
		changed = append(changed, spec.Field)
	}

	return changed
}

// mergeValue возвращает значение для записи по контракту операции.
// Объект без поля Unwrap не сохраняется; не-объект сохраняется как есть.
func mergeValue(spec OperationSpec, value any) (any, bool) {
	if spec.Unwrap == "" {
		return value, true
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return value, true
	}

	inner, ok := obj[spec.Unwrap]
	return inner, ok
}
