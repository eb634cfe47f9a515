package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/telemetry"
)

// Enrich запускает пайплайн для записи из пути.
// POST /api/v1/jobs/{id}/enrich
// POST /api/v1/candidates/{id}/enrich
//
// С ?async=true запрос публикуется в enrich.requests и возвращается 202.
// Иначе пайплайн выполняется синхронно; ошибки отдельных операций
// возвращаются в поле errors со статусом 200.
func (h *Handler) Enrich(pipeline string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.PathValue("id"))

		async, err := parseBool(r.URL.Query().Get("async"))
		if err != nil {
			BadRequest(w, "invalid async parameter")
			return
		}

		if async {
			h.enqueue(w, r, pipeline, id)
			return
		}

		result, err := h.runner.RunPipeline(r.Context(), pipeline, id)
		if HandleRunError(w, h.logger, err) {
			return
		}

		Success(w, EnrichFromResult(result))
	})
}

// enqueue публикует запрос обогащения.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, pipeline, id string) {
	if id == "" {
		BadRequest(w, "missing id")
		return
	}
	if h.requester == nil {
		Unavailable(w, "async enrichment is not configured")
		return
	}

	requestID, err := h.requester.PublishEnrichRequested(r.Context(), mq.EnrichRequestedPayload{
		Pipeline: pipeline,
		ID:       id,
		Source:   mq.SourceAPI,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	telemetry.WithRecordID(telemetry.WithPipeline(h.logger, pipeline), id).
		Info("enrich request queued", "request_id", requestID)

	Accepted(w, EnrichAcceptedResponse{
		RequestID: requestID,
		Pipeline:  pipeline,
		ID:        id,
	})
}

// parseBool разбирает флаг запроса; пустая строка — false.
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
