package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/export"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

var exportDestinations = map[string]policy.ExportType{
	"HMIS":            policy.ExportHMIS,
	"PARTNER_SHARING": policy.ExportPartnerSharing,
	"RESEARCH":        policy.ExportResearch,
	"COURT":           policy.ExportCourt,
}

type exportBatchRequest struct {
	Destination string                `json:"destination"`
	Records     []export.ClientRecord `json:"records"`
}

func (h *Handler) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}

	var req exportBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	destination, ok := exportDestinations[req.Destination]
	if !ok {
		writeError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown export destination %q", req.Destination))
		return
	}

	results, err := h.exports.BuildBatch(r.Context(), req.Records, access, destination)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"destination": req.Destination,
		"records":     results,
	})
}

type evaluatePolicyRequest struct {
	TenantID string   `json:"tenantId"`
	Scopes   []string `json:"scopes"`
}

func (h *Handler) handleEvaluateExportPolicy(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}

	var req evaluatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	tenantID, err := domain.ParseTenantID(req.TenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	scopes := make([]clearance.Scope, len(req.Scopes))
	for i, s := range req.Scopes {
		scopes[i] = clearance.Scope(s)
	}

	decision, err := h.clearances.EvaluateUnhashedExport(r.Context(), tenantID, access.ActorID, scopes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}
