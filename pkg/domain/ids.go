// Package domain holds typed identifiers shared across modules. Typed IDs
// keep client, actor, and tenant handles from being mixed up at call sites.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type (
	// ClientID identifies a client (survivor) profile aggregate.
	ClientID uuid.UUID
	// ActorID identifies the user performing an operation.
	ActorID uuid.UUID
	// TenantID identifies the owning organization.
	TenantID uuid.UUID
	// ConsentID identifies a consent record from the consent component.
	ConsentID uuid.UUID
	// EnrollmentID identifies a program enrollment aggregate.
	EnrollmentID uuid.UUID
	// ClearanceID identifies an export security clearance grant.
	ClearanceID uuid.UUID
	// NoteID identifies a restricted case note.
	NoteID uuid.UUID
)

func (id ClientID) String() string     { return uuid.UUID(id).String() }
func (id ActorID) String() string      { return uuid.UUID(id).String() }
func (id TenantID) String() string     { return uuid.UUID(id).String() }
func (id ConsentID) String() string    { return uuid.UUID(id).String() }
func (id EnrollmentID) String() string { return uuid.UUID(id).String() }
func (id ClearanceID) String() string  { return uuid.UUID(id).String() }
func (id NoteID) String() string       { return uuid.UUID(id).String() }

// Text marshaling keeps IDs as canonical UUID strings in JSON payloads;
// defined types do not inherit uuid.UUID's methods.
func (id ClientID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ActorID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ConsentID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id EnrollmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ClearanceID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id NoteID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }

func (id *ClientID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = ClientID(u)
	return err
}

func (id *ActorID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = ActorID(u)
	return err
}

func (id *TenantID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = TenantID(u)
	return err
}

func (id *ConsentID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = ConsentID(u)
	return err
}

func (id *EnrollmentID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = EnrollmentID(u)
	return err
}

func (id *ClearanceID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = ClearanceID(u)
	return err
}

func (id *NoteID) UnmarshalText(raw []byte) error {
	u, err := uuid.Parse(string(raw))
	*id = NoteID(u)
	return err
}

func (id ClientID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ConsentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EnrollmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClearanceID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id NoteID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseClientID(raw string) (ClientID, error) {
	u, err := parseUUID(raw)
	return ClientID(u), err
}

func ParseActorID(raw string) (ActorID, error) {
	u, err := parseUUID(raw)
	return ActorID(u), err
}

func ParseTenantID(raw string) (TenantID, error) {
	u, err := parseUUID(raw)
	return TenantID(u), err
}

func ParseConsentID(raw string) (ConsentID, error) {
	u, err := parseUUID(raw)
	return ConsentID(u), err
}

func ParseEnrollmentID(raw string) (EnrollmentID, error) {
	u, err := parseUUID(raw)
	return EnrollmentID(u), err
}

func ParseClearanceID(raw string) (ClearanceID, error) {
	u, err := parseUUID(raw)
	return ClearanceID(u), err
}

func ParseNoteID(raw string) (NoteID, error) {
	u, err := parseUUID(raw)
	return NoteID(u), err
}

func NewClientID() ClientID         { return ClientID(uuid.New()) }
func NewActorID() ActorID           { return ActorID(uuid.New()) }
func NewTenantID() TenantID         { return TenantID(uuid.New()) }
func NewConsentID() ConsentID       { return ConsentID(uuid.New()) }
func NewEnrollmentID() EnrollmentID { return EnrollmentID(uuid.New()) }
func NewClearanceID() ClearanceID   { return ClearanceID(uuid.New()) }
func NewNoteID() NoteID             { return NoteID(uuid.New()) }
