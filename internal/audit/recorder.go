package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/export"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// Recorder translates domain operations into trail events. It satisfies
// the recorder interfaces the domain services declare, so those packages
// depend on their own interface and not on this one.
type Recorder struct {
	publisher *Publisher
}

func NewRecorder(publisher *Publisher) *Recorder {
	return &Recorder{publisher: publisher}
}

func (r *Recorder) ExportGenerated(ctx context.Context, event export.ExportAudit) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindExportGenerated,
		ActorID:      event.Actor,
		ResourceType: "export",
		ResourceID:   event.ContentHash,
		Details: map[string]string{
			"destination": string(event.Destination),
			"recordCount": strconv.Itoa(event.RecordCount),
			"contentHash": event.ContentHash,
		},
	})
}

func (r *Recorder) ClearanceGranted(ctx context.Context, c clearance.SecurityClearance) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindClearanceGranted,
		ActorID:      c.GrantedBy,
		ResourceType: "clearance",
		ResourceID:   c.ID.String(),
		Reason:       c.Justification,
		Details: map[string]string{
			"userId":     c.UserID.String(),
			"scopeCount": strconv.Itoa(len(c.Scopes)),
			"expiresAt":  c.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

func (r *Recorder) ClearanceRevoked(ctx context.Context, clearanceID domain.ClearanceID, revokedBy domain.ActorID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindClearanceRevoked,
		ActorID:      revokedBy,
		ResourceType: "clearance",
		ResourceID:   clearanceID.String(),
		Reason:       reason,
	})
}

func (r *Recorder) ExportPolicyEvaluated(ctx context.Context, tenant domain.TenantID, actor domain.ActorID, decision clearance.PolicyDecision) error {
	outcome := "deny"
	if decision.Permit {
		outcome = "permit"
	}
	event := Event{
		Kind:         KindPolicyViolation,
		ActorID:      actor,
		TenantID:     tenant,
		ResourceType: "export_policy",
		ResourceID:   tenant.String(),
		Rule:         decision.Rule,
		Decision:     outcome,
		Reason:       decision.Reason,
		Details:      decision.Metadata,
	}
	if decision.Permit {
		event.Kind = KindDataAccess
	}
	return r.publisher.Emit(ctx, event)
}

func (r *Recorder) NoteSealed(ctx context.Context, noteID domain.NoteID, actor domain.ActorID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindNoteSealed,
		ActorID:      actor,
		ResourceType: "restricted_note",
		ResourceID:   noteID.String(),
		Reason:       reason,
	})
}

func (r *Recorder) NoteUnsealed(ctx context.Context, noteID domain.NoteID, actor domain.ActorID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindNoteUnsealed,
		ActorID:      actor,
		ResourceType: "restricted_note",
		ResourceID:   noteID.String(),
		Reason:       reason,
	})
}

func (r *Recorder) PacketBuilt(ctx context.Context, consentID domain.ConsentID, enrollmentID domain.EnrollmentID, actor domain.ActorID) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindPacketBuilt,
		ActorID:      actor,
		ResourceType: "ce_packet",
		ResourceID:   enrollmentID.String(),
		Details: map[string]string{
			"consentId": consentID.String(),
		},
	})
}

// DataAccess records a routine read. Value summaries only.
func (r *Recorder) DataAccess(ctx context.Context, actor domain.ActorID, resourceType, resourceID string, details map[string]string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindDataAccess,
		ActorID:      actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
}

// UnauthorizedAccess records a denied attempt. Kept distinct from
// DataAccess so the high-risk query surfaces it.
func (r *Recorder) UnauthorizedAccess(ctx context.Context, actor domain.ActorID, resourceType, resourceID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindUnauthorizedAccess,
		ActorID:      actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Reason:       reason,
	})
}

// DataCorrection links a correcting record to the original it supersedes.
func (r *Recorder) DataCorrection(ctx context.Context, actor domain.ActorID, resourceType, originalID, correctionID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindDataCorrection,
		ActorID:      actor,
		ResourceType: resourceType,
		ResourceID:   originalID,
		Reason:       reason,
		Details: map[string]string{
			"correctionId": correctionID,
		},
	})
}

func (r *Recorder) SafetyProtocolActivated(ctx context.Context, actor domain.ActorID, clientID domain.ClientID, protocol string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindSafetyProtocolActivated,
		ActorID:      actor,
		ResourceType: "client",
		ResourceID:   clientID.String(),
		Details: map[string]string{
			"protocol": protocol,
		},
	})
}

func (r *Recorder) DVHighRiskEvent(ctx context.Context, actor domain.ActorID, clientID domain.ClientID, reason string) error {
	return r.publisher.Emit(ctx, Event{
		Kind:         KindDVHighRiskEvent,
		ActorID:      actor,
		ResourceType: "client",
		ResourceID:   clientID.String(),
		Reason:       reason,
	})
}
