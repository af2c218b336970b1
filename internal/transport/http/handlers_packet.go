package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/FedassaMeg/haven-sub012/internal/hasher"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type buildPacketRequest struct {
	ConsentID     string            `json:"consentId"`
	EnrollmentID  string            `json:"enrollmentId"`
	RawIdentifier string            `json:"rawIdentifier"`
	Scopes        []string          `json:"scopes"`
	Metadata      map[string]string `json:"metadata"`
}

// handleBuildPacket assembles a coordinated-entry packet. The raw
// identifier arrives in the request body, is pseudonymized inside the
// builder, and is never echoed back or logged.
func (h *Handler) handleBuildPacket(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}

	var req buildPacketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	consentID, err := domain.ParseConsentID(req.ConsentID)
	if err != nil {
		writeError(w, err)
		return
	}
	enrollmentID, err := domain.ParseEnrollmentID(req.EnrollmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.consents.FindByID(r.Context(), consentID)
	if err != nil {
		writeError(w, err)
		return
	}

	scopes := make([]hasher.ShareScope, len(req.Scopes))
	for i, s := range req.Scopes {
		scopes[i] = hasher.ShareScope(s)
	}

	packet, err := h.packets.Build(req.RawIdentifier, record, enrollmentID, scopes, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.recorder.PacketBuilt(r.Context(), consentID, enrollmentID, access.ActorID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, packet)
}
