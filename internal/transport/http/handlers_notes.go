package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FedassaMeg/haven-sub012/internal/notes"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type createNoteRequest struct {
	ClientID          string   `json:"clientId"`
	Type              string   `json:"type"`
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	AuthorizedViewers []string `json:"authorizedViewers"`
	Scope             string   `json:"scope"`
}

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	clientID, err := domain.ParseClientID(req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}
	viewers := make([]domain.ActorID, len(req.AuthorizedViewers))
	for i, raw := range req.AuthorizedViewers {
		viewers[i], err = domain.ParseActorID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	note, err := notes.NewNote(clientID, notes.NoteType(req.Type), req.Title, req.Content,
		access.ActorID, access.ActorName, viewers, notes.VisibilityScope(req.Scope))
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.notes.Create(r.Context(), note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleReadNote(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	noteID, err := domain.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, err)
		return
	}

	note, err := h.notes.Read(r.Context(), noteID, access)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type sealNoteRequest struct {
	Reason     string `json:"reason"`
	LegalBasis string `json:"legalBasis"`
	Temporary  bool   `json:"temporary"`
	ExpiresAt  string `json:"expiresAt"`
}

func (h *Handler) handleSealNote(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	noteID, err := domain.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req sealNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}
	var expiresAt time.Time
	if req.ExpiresAt != "" {
		expiresAt, err = time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "expiresAt must be RFC 3339"))
			return
		}
	}

	note, err := h.notes.Seal(r.Context(), noteID, access, req.Reason, req.LegalBasis, req.Temporary, expiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type unsealNoteRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleUnsealNote(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.GetAccessContext(r.Context())
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "missing access context"))
		return
	}
	noteID, err := domain.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req unsealNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return
	}

	note, err := h.notes.Unseal(r.Context(), noteID, access, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
