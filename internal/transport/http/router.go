// Package httptransport is the thin HTTP layer. Handlers parse, delegate
// to domain services, and translate errors; business logic stays out.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FedassaMeg/haven-sub012/internal/audit"
	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/consent"
	"github.com/FedassaMeg/haven-sub012/internal/export"
	"github.com/FedassaMeg/haven-sub012/internal/hasher"
	"github.com/FedassaMeg/haven-sub012/internal/notes"
	"github.com/FedassaMeg/haven-sub012/internal/platform/metrics"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
)

// Handler carries the domain services the routes delegate to.
type Handler struct {
	exports    *export.Service
	clearances *clearance.Service
	notes      *notes.Service
	auditStore audit.Store
	packets    *hasher.Builder
	consents   consent.Store
	recorder   *audit.Recorder
	logger     *slog.Logger
}

func NewHandler(exports *export.Service, clearances *clearance.Service, noteService *notes.Service, auditStore audit.Store, packets *hasher.Builder, consents consent.Store, recorder *audit.Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		exports:    exports,
		clearances: clearances,
		notes:      noteService,
		auditStore: auditStore,
		packets:    packets,
		consents:   consents,
		recorder:   recorder,
		logger:     logger,
	}
}

// NewRouter wires all endpoints. Everything under the authenticated group
// requires a verified bearer token; health and metrics stay open for the
// orchestrator and scraper.
func NewRouter(h *Handler, verifier *middleware.TokenVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, logger))

		r.Post("/exports/batch", metrics.Instrument("/exports/batch", h.handleExportBatch))
		r.Post("/exports/policy/evaluate", metrics.Instrument("/exports/policy/evaluate", h.handleEvaluateExportPolicy))

		r.Post("/clearances", metrics.Instrument("/clearances", h.handleGrantClearance))
		r.Post("/clearances/{clearanceID}/revoke", metrics.Instrument("/clearances/revoke", h.handleRevokeClearance))

		r.Post("/packets", metrics.Instrument("/packets", h.handleBuildPacket))

		r.Post("/notes", metrics.Instrument("/notes", h.handleCreateNote))
		r.Get("/notes/{noteID}", metrics.Instrument("/notes/get", h.handleReadNote))
		r.Post("/notes/{noteID}/seal", metrics.Instrument("/notes/seal", h.handleSealNote))
		r.Post("/notes/{noteID}/unseal", metrics.Instrument("/notes/unseal", h.handleUnsealNote))

		r.Get("/audit/events", metrics.Instrument("/audit/events", h.handleQueryAudit))
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
