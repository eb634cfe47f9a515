package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Enricher/internal/domain"
)

// maxRecordSize — ограничение размера тела PUT.
const maxRecordSize = 4 << 20

var startTime = time.Now()

// GetRecord возвращает документ записи.
// GET /api/v1/jobs/{id}
// GET /api/v1/candidates/{id}
func (h *Handler) GetRecord(kind domain.Kind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := h.stores[kind]
		if !ok {
			NotFound(w, fmt.Sprintf("%s records are not served", kind))
			return
		}

		id := strings.TrimSpace(r.PathValue("id"))
		if id == "" {
			BadRequest(w, "missing id")
			return
		}

		record, err := store.Get(r.Context(), id)
		if HandleRepoError(w, h.logger, err, fmt.Sprintf("%s not found", kind)) {
			return
		}

		Success(w, record)
	})
}

// PutRecord создаёт или заменяет документ записи.
// PUT /api/v1/jobs/{id}
// PUT /api/v1/candidates/{id}
//
// Тело — JSON-объект документа; AttributeValue-формы нормализуются,
// id всегда берётся из пути.
func (h *Handler) PutRecord(kind domain.Kind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := h.stores[kind]
		if !ok {
			NotFound(w, fmt.Sprintf("%s records are not served", kind))
			return
		}

		id := strings.TrimSpace(r.PathValue("id"))
		if id == "" {
			BadRequest(w, "missing id")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordSize))
		if err != nil {
			BadRequest(w, "invalid request body")
			return
		}

		record, err := domain.DecodeRecord(body)
		if err != nil {
			BadRequest(w, "invalid request body")
			return
		}
		record[domain.FieldID] = id

		if HandleRepoError(w, h.logger, store.Put(r.Context(), record), "") {
			return
		}

		Success(w, record)
	})
}

// Health отвечает на /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	Success(w, HealthResponse{
		Status: "ok",
		Uptime: time.Since(startTime).Round(time.Second).String(),
	})
}
