package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FedassaMeg/haven-sub012/internal/audit"
	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/consent"
	"github.com/FedassaMeg/haven-sub012/internal/export"
	"github.com/FedassaMeg/haven-sub012/internal/hasher"
	"github.com/FedassaMeg/haven-sub012/internal/notes"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	"github.com/FedassaMeg/haven-sub012/internal/redact"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

type testEnv struct {
	handler    *Handler
	auditStore *audit.InMemoryStore
	consents   *consent.InMemoryStore
	noteStore  *notes.InMemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore, logger)
	recorder := audit.NewRecorder(publisher)

	pseudo := hasher.NewPseudonymizer(bytes.Repeat([]byte{0x5a}, hasher.SaltBytes))
	engine := redact.NewEngine(pseudo)
	resolver := policy.NewCachedResolver(policy.NewResolver("1.0"), policy.NewInMemoryCache(), logger)
	exports := export.NewService(export.NewProjectionBuilder(resolver, engine), recorder, logger)

	clearances := clearance.NewService(
		clearance.NewInMemoryClearanceStore(), clearance.NewInMemoryConfigStore(), recorder, logger)

	noteStore := notes.NewInMemoryStore()
	noteService := notes.NewService(noteStore, recorder, logger)

	consents := consent.NewInMemoryStore()

	h := NewHandler(exports, clearances, noteService, auditStore,
		hasher.NewBuilder(hasher.AlgorithmSHA256Salt), consents, recorder, logger)
	return &testEnv{handler: h, auditStore: auditStore, consents: consents, noteStore: noteStore}
}

func authedRequest(method, target string, body any, access policy.AccessContext) *http.Request {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyAccess, access))
}

func adminAccess() policy.AccessContext {
	return policy.AccessContext{
		ActorID:   domain.NewActorID(),
		ActorName: "Alex Admin",
		Roles:     []policy.Role{policy.RoleAdministrator},
	}
}

func TestHandleBuildPacket_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	record := consent.Record{
		ID:        domain.NewConsentID(),
		ClientID:  domain.NewClientID(),
		Status:    consent.StatusGranted,
		Version:   3,
		GrantedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, env.consents.Save(context.Background(), record))

	body := map[string]any{
		"consentId":     record.ID.String(),
		"enrollmentId":  domain.NewEnrollmentID().String(),
		"rawIdentifier": "client-554-xj",
		"scopes":        []string{"HOUSING_PLACEMENT"},
	}
	w := httptest.NewRecorder()
	env.handler.handleBuildPacket(w, authedRequest("POST", "/packets", body, adminAccess()))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var packet hasher.Packet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &packet))
	assert.NotEmpty(t, packet.ClientHash)
	assert.NotEmpty(t, packet.Checksum)
	assert.Equal(t, record.ID, packet.ConsentID)
	assert.NotContains(t, w.Body.String(), "client-554-xj")

	events, err := env.auditStore.ListByResource(context.Background(), "ce_packet", packet.EnrollmentID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.KindPacketBuilt, events[0].Kind)
}

func TestHandleBuildPacket_RevokedConsent(t *testing.T) {
	env := newTestEnv(t)
	record := consent.Record{
		ID:       domain.NewConsentID(),
		ClientID: domain.NewClientID(),
		Status:   consent.StatusRevoked,
	}
	require.NoError(t, env.consents.Save(context.Background(), record))

	body := map[string]any{
		"consentId":     record.ID.String(),
		"enrollmentId":  domain.NewEnrollmentID().String(),
		"rawIdentifier": "client-554-xj",
	}
	w := httptest.NewRecorder()
	env.handler.handleBuildPacket(w, authedRequest("POST", "/packets", body, adminAccess()))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestHandleBuildPacket_UnknownConsent(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"consentId":     domain.NewConsentID().String(),
		"enrollmentId":  domain.NewEnrollmentID().String(),
		"rawIdentifier": "client-554-xj",
	}
	w := httptest.NewRecorder()
	env.handler.handleBuildPacket(w, authedRequest("POST", "/packets", body, adminAccess()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleExportBatch_RedactsForCaseManager(t *testing.T) {
	env := newTestEnv(t)
	access := policy.AccessContext{
		ActorID: domain.NewActorID(),
		Roles:   []policy.Role{policy.RoleCaseManager},
	}
	body := map[string]any{
		"destination": "HMIS",
		"records": []export.ClientRecord{{
			ClientID:   domain.NewClientID(),
			FirstName:  "Jordan",
			LastName:   "Diaz",
			CaseNumber: "CASE-1001",
		}},
	}
	w := httptest.NewRecorder()
	env.handler.handleExportBatch(w, authedRequest("POST", "/exports/batch", body, access))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Jordan")
	assert.Contains(t, w.Body.String(), "CASE-1001")
}

func TestHandleExportBatch_UnknownDestination(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"destination": "FTP_DUMP"}
	w := httptest.NewRecorder()
	env.handler.handleExportBatch(w, authedRequest("POST", "/exports/batch", body, adminAccess()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGrantClearance_RequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	access := policy.AccessContext{
		ActorID: domain.NewActorID(),
		Roles:   []policy.Role{policy.RoleCaseManager},
	}
	body := map[string]any{
		"tenantId": domain.NewTenantID().String(),
		"userId":   domain.NewActorID().String(),
	}
	w := httptest.NewRecorder()
	env.handler.handleGrantClearance(w, authedRequest("POST", "/clearances", body, access))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleGrantClearance_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"tenantId":      domain.NewTenantID().String(),
		"userId":        domain.NewActorID().String(),
		"roles":         []string{string(policy.RoleAttorney)},
		"scopes":        []string{string(clearance.ScopePIIDisclosure)},
		"justification": "subpoena 2026-cv-1187",
	}
	w := httptest.NewRecorder()
	env.handler.handleGrantClearance(w, authedRequest("POST", "/clearances", body, adminAccess()))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var granted clearance.SecurityClearance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &granted))
	assert.False(t, granted.ID.IsNil())
	assert.True(t, granted.ExpiresAt.After(time.Now()))
}

func TestHandleReadNote_VisibilityEnforced(t *testing.T) {
	env := newTestEnv(t)
	author := domain.NewActorID()
	note, err := notes.NewNote(domain.NewClientID(), notes.TypeSafetyPlan, "plan", "relocation details",
		author, "Casey", nil, "")
	require.NoError(t, err)
	require.NoError(t, env.noteStore.Save(context.Background(), note))

	t.Run("author reads own note", func(t *testing.T) {
		access := policy.AccessContext{ActorID: author, Roles: []policy.Role{policy.RoleCaseManager}}
		w := httptest.NewRecorder()
		env.handler.handleReadNote(w, authedRequestWithNoteID("GET", note.ID, nil, access))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("data analyst denied", func(t *testing.T) {
		access := policy.AccessContext{ActorID: domain.NewActorID(), Roles: []policy.Role{policy.RoleDataAnalyst}}
		w := httptest.NewRecorder()
		env.handler.handleReadNote(w, authedRequestWithNoteID("GET", note.ID, nil, access))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandleSealNote_BlocksOtherReaders(t *testing.T) {
	env := newTestEnv(t)
	author := domain.NewActorID()
	supervisor := policy.AccessContext{ActorID: domain.NewActorID(), Roles: []policy.Role{policy.RoleSupervisor}}

	note, err := notes.NewNote(domain.NewClientID(), notes.TypeStandard, "intake", "initial intake summary",
		author, "Casey", nil, notes.ScopeCaseTeam)
	require.NoError(t, err)
	require.NoError(t, env.noteStore.Save(context.Background(), note))

	w := httptest.NewRecorder()
	env.handler.handleSealNote(w, authedRequestWithNoteID("POST", note.ID, map[string]any{
		"reason":     "pending custody hearing",
		"legalBasis": "court order 44-B",
	}, supervisor))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	authorAccess := policy.AccessContext{ActorID: author, Roles: []policy.Role{policy.RoleCaseManager}}
	env.handler.handleReadNote(w, authedRequestWithNoteID("GET", note.ID, nil, authorAccess))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	env.handler.handleReadNote(w, authedRequestWithNoteID("GET", note.ID, nil, supervisor))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleQueryAudit(t *testing.T) {
	env := newTestEnv(t)
	actor := domain.NewActorID()
	require.NoError(t, env.auditStore.Append(context.Background(), audit.Event{
		Kind: audit.KindDataAccess, ActorID: actor, ResourceType: "restricted_note",
	}))

	t.Run("requires a filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.handleQueryAudit(w, authedRequest("GET", "/audit/events", nil, adminAccess()))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("by actor", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.handleQueryAudit(w, authedRequest("GET", "/audit/events?actor="+actor.String(), nil, adminAccess()))
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		access := policy.AccessContext{ActorID: domain.NewActorID(), Roles: []policy.Role{policy.RoleCaseManager}}
		w := httptest.NewRecorder()
		env.handler.handleQueryAudit(w, authedRequest("GET", "/audit/events?actor="+actor.String(), nil, access))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestHandlers_MissingAccessContext(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("POST", "/exports/batch", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	env.handler.handleExportBatch(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// authedRequestWithNoteID injects both the access context and the chi route
// parameter the handler reads the note id from.
func authedRequestWithNoteID(method string, noteID domain.NoteID, body any, access policy.AccessContext) *http.Request {
	req := authedRequest(method, "/notes/"+noteID.String(), body, access)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("noteID", noteID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
