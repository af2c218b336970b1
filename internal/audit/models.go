// Package audit is the compliance trail. Every consequential operation in
// the system appends here before it reports success; entries are immutable
// and never carry raw PII.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// Kind names what happened. The set is closed: consumers alert on exact
// values, so new kinds are additive and old ones never change meaning.
type Kind string

const (
	KindDataAccess              Kind = "data_access"
	KindUnauthorizedAccess      Kind = "unauthorized_access"
	KindDataModification        Kind = "data_modification"
	KindDataCorrection          Kind = "data_correction"
	KindExportGenerated         Kind = "export_generated"
	KindSafetyProtocolActivated Kind = "safety_protocol_activated"
	KindDVHighRiskEvent         Kind = "dv_high_risk_event"
	KindPolicyViolation         Kind = "policy_violation"
	KindClearanceGranted        Kind = "clearance_granted"
	KindClearanceRevoked        Kind = "clearance_revoked"
	KindNoteSealed              Kind = "note_sealed"
	KindNoteUnsealed            Kind = "note_unsealed"
	KindPacketBuilt             Kind = "packet_built"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var kindSeverities = map[Kind]Severity{
	KindDataAccess:              SeverityInfo,
	KindUnauthorizedAccess:      SeverityHigh,
	KindDataModification:        SeverityInfo,
	KindDataCorrection:          SeverityWarning,
	KindExportGenerated:         SeverityWarning,
	KindSafetyProtocolActivated: SeverityHigh,
	KindDVHighRiskEvent:         SeverityCritical,
	KindPolicyViolation:         SeverityWarning,
	KindClearanceGranted:        SeverityWarning,
	KindClearanceRevoked:        SeverityWarning,
	KindNoteSealed:              SeverityInfo,
	KindNoteUnsealed:            SeverityWarning,
	KindPacketBuilt:             SeverityInfo,
}

func (k Kind) Severity() Severity {
	if s, ok := kindSeverities[k]; ok {
		return s
	}
	return SeverityInfo
}

// highRiskKinds is the fixed subset compliance dashboards poll.
var highRiskKinds = map[Kind]bool{
	KindUnauthorizedAccess:      true,
	KindDVHighRiskEvent:         true,
	KindSafetyProtocolActivated: true,
	KindExportGenerated:         true,
}

func (k Kind) IsHighRisk() bool { return highRiskKinds[k] }

// Event is one immutable trail entry. Details hold only sanitized values:
// lengths, counts, category labels, rejection reasons. Anything that came
// out of a client record stays out.
type Event struct {
	ID           uuid.UUID
	Timestamp    time.Time
	Kind         Kind
	Severity     Severity
	ActorID      domain.ActorID
	TenantID     domain.TenantID
	ResourceType string
	ResourceID   string
	Rule         string
	Decision     string
	Reason       string
	Details      map[string]string

	// Request metadata copied from the access context.
	IPAddress string
	SessionID string
	UserAgent string
}

// LengthSummary describes a sensitive value without reproducing it.
func LengthSummary(value string) string {
	return fmt.Sprintf("len:%d", len(value))
}
