package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldID — ключ идентификатора в любом документе.
const FieldID = "id"

// Kind — тип документа.
type Kind string

const (
	// KindJob — вакансия (job posting).
	KindJob Kind = "job"

	// KindCandidate — кандидат с резюме.
	KindCandidate Kind = "candidate"
)

// IsValid проверяет, что тип документа известен.
func (k Kind) IsValid() bool {
	switch k {
	case KindJob, KindCandidate:
		return true
	default:
		return false
	}
}

// Record — документ (вакансия или кандидат) в виде map полей.
//
// Запись хранит исходный текст и ноль или больше полей обогащения.
// Оркестратор работает с локальной копией записи и перезаписывает
// документ целиком при сохранении.
type Record map[string]any

// NewRecord создаёт запись с указанным ID.
func NewRecord(id string) Record {
	return Record{FieldID: id}
}

// DecodeRecord разбирает JSON-документ в Record.
// AttributeValue-формы (DynamoDB export) нормализуются в обычные значения.
func DecodeRecord(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return Record(Normalize(raw)), nil
}

// Encode сериализует запись в JSON.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(map[string]any(r))
}

// ID возвращает идентификатор записи.
func (r Record) ID() string {
	return r.String(FieldID)
}

// Has проверяет наличие непустого поля.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String возвращает строковое значение поля.
// Числа и булевы значения приводятся к тексту, отсутствующее поле — "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// FirstString возвращает первое непустое строковое значение из перечисленных полей.
func (r Record) FirstString(keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(r.String(key)); s != "" {
			return r.String(key)
		}
	}
	return ""
}

// Map возвращает вложенный объект или nil.
func (r Record) Map(key string) map[string]any {
	if m, ok := r[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Clone возвращает глубокую копию записи.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneValue(map[string]any(r)).(map[string]any))
}

// Stringify приводит скалярное значение к тексту.
// nil и составные значения дают "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}
