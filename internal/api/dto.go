package api

import (
	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/orchestrator"
)

// EnrichResponse — результат синхронного запуска пайплайна.
//
// Поля domain.Response (id, updated, results, errors) вынесены на
// верхний уровень; results и errors присутствуют всегда.
type EnrichResponse struct {
	RunID      string            `json:"run_id"`
	Pipeline   string            `json:"pipeline"`
	Status     domain.RunStatus  `json:"status"`
	DurationMs int64             `json:"duration_ms"`
	ID         string            `json:"id"`
	Updated    bool              `json:"updated"`
	Results    map[string]any    `json:"results"`
	Errors     map[string]string `json:"errors"`
}

// EnrichFromResult конвертирует orchestrator.Result в EnrichResponse.
func EnrichFromResult(r *orchestrator.Result) EnrichResponse {
	resp := r.Response()
	out := EnrichResponse{
		RunID:      r.RunID.String(),
		Pipeline:   r.Pipeline,
		Status:     r.Status(),
		DurationMs: r.Duration.Milliseconds(),
		ID:         resp.ID,
		Updated:    resp.Updated,
		Results:    resp.Results,
		Errors:     resp.Errors,
	}
	if out.Results == nil {
		out.Results = map[string]any{}
	}
	if out.Errors == nil {
		out.Errors = map[string]string{}
	}
	return out
}

// EnrichAcceptedResponse — запрос поставлен в очередь (?async=true).
type EnrichAcceptedResponse struct {
	RequestID string `json:"request_id"`
	Pipeline  string `json:"pipeline"`
	ID        string `json:"id"`
}

// HealthResponse — ответ /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
