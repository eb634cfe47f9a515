package domain

import "encoding/json"

// Request — входной контракт пайплайна: { "id": "..." }.
type Request struct {
	ID string `json:"id"`
}

// Response — выходной контракт пайплайна.
//
// При ошибке загрузки записи заполняется только Error, и в JSON попадает
// только {"error": ...}. Иначе results и errors присутствуют всегда, даже
// пустые. Непустой Errors не означает неуспех вызова: Updated отражает
// только то, был ли сохранён хотя бы один результат.
type Response struct {
	ID      string            `json:"id,omitempty"`
	Updated bool              `json:"updated"`
	Results map[string]any    `json:"results"`
	Errors  map[string]string `json:"errors"`
	Error   string            `json:"error,omitempty"`
}

// MarshalJSON реализует json.Marshaler.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}

	type plain Response
	out := plain(r)
	if out.Results == nil {
		out.Results = map[string]any{}
	}
	if out.Errors == nil {
		out.Errors = map[string]string{}
	}
	return json.Marshal(out)
}

// ErrorResponse создаёт Response для терминальной ошибки.
func ErrorResponse(err error) Response {
	return Response{Error: err.Error()}
}

// Status возвращает итоговый статус запуска для метрик и событий.
func (r Response) Status() RunStatus {
	switch {
	case r.Error != "":
		return RunStatusFailed
	case len(r.Errors) > 0:
		return RunStatusPartial
	default:
		return RunStatusSucceeded
	}
}
