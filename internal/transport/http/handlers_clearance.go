package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type grantClearanceRequest struct {
	TenantID      string   `json:"tenantId"`
	UserID        string   `json:"userId"`
	Roles         []string `json:"roles"`
	Scopes        []string `json:"scopes"`
	Justification string   `json:"justification"`
}

func (h *Handler) handleGrantClearance(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	if !access.HasAnyRole(policy.RoleAdministrator, policy.RoleSupervisor) {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "granting clearances requires an administrative role"))
		return
	}

	var req grantClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	tenantID, err := domain.ParseTenantID(req.TenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := domain.ParseActorID(req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	roles := make([]policy.Role, len(req.Roles))
	for i, role := range req.Roles {
		roles[i] = policy.Role(role)
	}
	scopes := make([]clearance.Scope, len(req.Scopes))
	for i, scope := range req.Scopes {
		scopes[i] = clearance.Scope(scope)
	}

	granted, err := h.clearances.GrantClearance(r.Context(), tenantID, userID, roles, scopes, access.ActorID, req.Justification)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, granted)
}

type revokeClearanceRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleRevokeClearance(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	if !access.HasAnyRole(policy.RoleAdministrator, policy.RoleSupervisor) {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "revoking clearances requires an administrative role"))
		return
	}

	clearanceID, err := domain.ParseClearanceID(chi.URLParam(r, "clearanceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req revokeClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}

	if err := h.clearances.RevokeClearance(r.Context(), clearanceID, access.ActorID, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
