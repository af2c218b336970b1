// Package export builds outbound projections of client records. A
// projection never contains more than the destination's access table and
// the actor's policy decision allow.
package export

import (
	"time"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// ClientRecord is the flattened client view that projections are built
// from. SSN arrives already encrypted by the vault; the projection layer
// never sees the raw number.
type ClientRecord struct {
	ClientID         domain.ClientID
	EnrollmentID     domain.EnrollmentID
	CaseNumber       string
	FirstName        string
	LastName         string
	EncryptedSSN     string
	DateOfBirth      time.Time
	StreetAddress    string
	City             string
	State            string
	ZipCode          string
	PhoneNumber      string
	EmailAddress     string
	Race             string
	Ethnicity        string
	HouseholdSize    int
	DisabilityStatus string
	MedicalNotes     string
	DVStatus         string
	VeteranStatus    string
	ProjectEntryDate time.Time
}

// FieldDescriptor binds a projection label to its accessor. The table
// below is the single source of what an export can ever contain; adding a
// field here is a reviewable policy change, not a reflection side effect.
type FieldDescriptor struct {
	Label string
	Value func(ClientRecord) any
}

var clientFields = []FieldDescriptor{
	{"clientId", func(r ClientRecord) any { return r.ClientID.String() }},
	{"enrollmentId", func(r ClientRecord) any { return r.EnrollmentID.String() }},
	{"caseNumber", func(r ClientRecord) any { return r.CaseNumber }},
	{"firstName", func(r ClientRecord) any { return r.FirstName }},
	{"lastName", func(r ClientRecord) any { return r.LastName }},
	{"clientSSN", func(r ClientRecord) any { return r.EncryptedSSN }},
	{"dateOfBirth", func(r ClientRecord) any { return r.DateOfBirth }},
	{"streetAddress", func(r ClientRecord) any { return r.StreetAddress }},
	{"city", func(r ClientRecord) any { return r.City }},
	{"state", func(r ClientRecord) any { return r.State }},
	{"zipCode", func(r ClientRecord) any { return r.ZipCode }},
	{"phoneNumber", func(r ClientRecord) any { return r.PhoneNumber }},
	{"emailAddress", func(r ClientRecord) any { return r.EmailAddress }},
	{"race", func(r ClientRecord) any { return r.Race }},
	{"ethnicity", func(r ClientRecord) any { return r.Ethnicity }},
	{"householdSize", func(r ClientRecord) any { return r.HouseholdSize }},
	{"disabilityStatus", func(r ClientRecord) any { return r.DisabilityStatus }},
	{"medicalNotes", func(r ClientRecord) any { return r.MedicalNotes }},
	{"dvStatus", func(r ClientRecord) any { return r.DVStatus }},
	{"veteranStatus", func(r ClientRecord) any { return r.VeteranStatus }},
	{"projectEntryDate", func(r ClientRecord) any { return r.ProjectEntryDate }},
}

// Fields exposes the descriptor table for callers that enumerate the
// projection surface, such as tenant field-level configuration screens.
func Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(clientFields))
	copy(out, clientFields)
	return out
}
