package api

import (
	"net/http"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/orchestrator"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(h.metrics),
	)

	// Enrichment
	mux.Handle("POST /api/v1/jobs/{id}/enrich", chain(h.Enrich(orchestrator.PipelineJob)))
	mux.Handle("POST /api/v1/candidates/{id}/enrich", chain(h.Enrich(orchestrator.PipelineCandidate)))

	// Records
	mux.Handle("GET /api/v1/jobs/{id}", chain(h.GetRecord(domain.KindJob)))
	mux.Handle("PUT /api/v1/jobs/{id}", chain(h.PutRecord(domain.KindJob)))
	mux.Handle("GET /api/v1/candidates/{id}", chain(h.GetRecord(domain.KindCandidate)))
	mux.Handle("PUT /api/v1/candidates/{id}", chain(h.PutRecord(domain.KindCandidate)))

	// Health и metrics
	mux.HandleFunc("GET /healthz", h.Health)
	if h.metricsH != nil {
		mux.Handle("GET /metrics", h.metricsH)
	}
}
