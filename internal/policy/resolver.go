package policy

import (
	"strings"

	"github.com/FedassaMeg/haven-sub012/internal/pii"
)

// RedactionLevel orders how aggressively a value is transformed before it
// reaches the caller. Higher levels remove more.
type RedactionLevel int

const (
	NoRedaction RedactionLevel = iota
	Minimal
	Partial
	HashOnly
	FullRedaction
)

func (l RedactionLevel) String() string {
	switch l {
	case NoRedaction:
		return "NO_REDACTION"
	case Minimal:
		return "MINIMAL"
	case Partial:
		return "PARTIAL"
	case HashOnly:
		return "HASH_ONLY"
	case FullRedaction:
		return "FULL_REDACTION"
	default:
		return "UNKNOWN"
	}
}

// ExportType selects the access-level table governing an export
// destination. ExportNone means an internal (non-export) read.
type ExportType string

const (
	ExportNone           ExportType = ""
	ExportHMIS           ExportType = "HMIS"
	ExportPartnerSharing ExportType = "PARTNER_SHARING"
	ExportResearch       ExportType = "RESEARCH"
	ExportCourt          ExportType = "COURT"
)

// exportAccessLevels is the category x export-type table of minimum access
// levels. Explicit tables instead of nested branching so a missing cell is
// visible at a glance.
var exportAccessLevels = map[ExportType]map[pii.Category]pii.AccessLevel{
	ExportHMIS: {
		pii.CategoryDirectIdentifier:   pii.LevelConfidential,
		pii.CategorySensitiveAttribute: pii.LevelRestricted,
		pii.CategoryQuasiIdentifier:    pii.LevelRestricted,
		pii.CategoryContactInfo:        pii.LevelRestricted,
		pii.CategoryHouseholdInfo:      pii.LevelInternal,
		pii.CategoryServiceData:        pii.LevelInternal,
	},
	ExportPartnerSharing: {
		pii.CategoryDirectIdentifier:   pii.LevelHighlyConfidential,
		pii.CategorySensitiveAttribute: pii.LevelHighlyConfidential,
		pii.CategoryQuasiIdentifier:    pii.LevelConfidential,
		pii.CategoryContactInfo:        pii.LevelConfidential,
		pii.CategoryHouseholdInfo:      pii.LevelConfidential,
		pii.CategoryServiceData:        pii.LevelRestricted,
	},
	ExportResearch: {
		pii.CategoryDirectIdentifier:   pii.LevelHighlyConfidential,
		pii.CategorySensitiveAttribute: pii.LevelConfidential,
		pii.CategoryQuasiIdentifier:    pii.LevelRestricted,
		pii.CategoryContactInfo:        pii.LevelInternal,
		pii.CategoryHouseholdInfo:      pii.LevelInternal,
		pii.CategoryServiceData:        pii.LevelPublic,
	},
	ExportCourt: {
		pii.CategoryDirectIdentifier:   pii.LevelRestricted,
		pii.CategorySensitiveAttribute: pii.LevelConfidential,
		pii.CategoryQuasiIdentifier:    pii.LevelInternal,
		pii.CategoryContactInfo:        pii.LevelInternal,
		pii.CategoryHouseholdInfo:      pii.LevelInternal,
		pii.CategoryServiceData:        pii.LevelInternal,
	},
}

// ExportAccessLevel returns the minimum access level an actor needs to see
// a category unredacted in the given export.
func ExportAccessLevel(export ExportType, category pii.Category) pii.AccessLevel {
	if table, ok := exportAccessLevels[export]; ok {
		return table[category]
	}
	return pii.MinimumLevel(category)
}

// fieldType is the finer-grained policy axis separating DV-sensitive notes
// and legal material from their broader categories.
type fieldType int

const (
	fieldDirectIdentifier fieldType = iota
	fieldDVNote
	fieldMedical
	fieldLegal
	fieldContact
	fieldService
)

var dvNoteMarkers = []string{"dvnote", "dvhistory", "dvstatus", "domesticviolence", "safetyplan", "safetyassessment"}
var legalMarkers = []string{"legal", "court", "subpoena", "protectiveorder"}

func fieldTypeOf(fieldLabel string, category pii.Category) fieldType {
	lower := strings.ToLower(fieldLabel)
	for _, m := range dvNoteMarkers {
		if strings.Contains(lower, m) {
			return fieldDVNote
		}
	}
	for _, m := range legalMarkers {
		if strings.Contains(lower, m) {
			return fieldLegal
		}
	}
	switch category {
	case pii.CategoryDirectIdentifier:
		return fieldDirectIdentifier
	case pii.CategorySensitiveAttribute:
		return fieldMedical
	case pii.CategoryContactInfo:
		return fieldContact
	default:
		return fieldService
	}
}

// Resolver computes redaction decisions. It is pure and stateless; wrap it
// in a CachedResolver when decisions are evaluated per field at volume.
type Resolver struct {
	// Version names the active rule set. Decision cache entries are keyed
	// by it so a policy rollout invalidates by construction.
	Version string
}

func NewResolver(version string) *Resolver {
	return &Resolver{Version: version}
}

// Resolve computes the redaction level for one field under one context.
// Pass ExportNone for internal reads. The category-based minimum-necessary
// policy and the graded field-type policy meet here: a context satisfying
// the required access level sees the value untouched, anything else falls
// through to the graded rules.
func (r *Resolver) Resolve(fieldLabel string, ctx AccessContext, export ExportType) RedactionLevel {
	category := pii.Classify(fieldLabel)

	required := pii.MinimumLevel(category)
	if export != ExportNone {
		required = ExportAccessLevel(export, category)
	}
	if ctx.MaxAccessLevel().Satisfies(required) {
		return NoRedaction
	}
	return r.gradedLevel(fieldLabel, category, ctx)
}

func (r *Resolver) gradedLevel(fieldLabel string, category pii.Category, ctx AccessContext) RedactionLevel {
	switch fieldTypeOf(fieldLabel, category) {
	case fieldDirectIdentifier:
		if ctx.CanViewFullPII() {
			return NoRedaction
		}
		// External partners and CE intake see hashed identifiers only.
		if ctx.IsExternalPartner() {
			return HashOnly
		}
		return Partial
	case fieldDVNote:
		if ctx.CanViewDVNotes() {
			return NoRedaction
		}
		return FullRedaction
	case fieldMedical:
		if ctx.hasMedicalRole() && ctx.HasScope(ScopeMedicalView) {
			return NoRedaction
		}
		if ctx.hasClinicalRole() || ctx.hasLegalRole() {
			return Partial
		}
		return FullRedaction
	case fieldLegal:
		if ctx.hasLegalRole() && ctx.HasScope(ScopeLegalView) {
			return NoRedaction
		}
		if ctx.hasClinicalRole() || ctx.hasAdminRole() {
			return Partial
		}
		return FullRedaction
	case fieldContact:
		if ctx.CanViewFullPII() {
			return NoRedaction
		}
		return Partial
	default:
		return r.DefaultLevel(ctx)
	}
}

// DefaultLevel is the redaction applied when no field-type rule matches.
func (r *Resolver) DefaultLevel(ctx AccessContext) RedactionLevel {
	switch {
	case ctx.IsExternalPartner():
		return FullRedaction
	case ctx.hasClinicalRole() && ctx.HasScope(ScopeDVView):
		return Minimal
	case ctx.hasLegalRole() && ctx.HasScope(ScopeLegalView):
		return Minimal
	case ctx.hasMedicalRole() && ctx.HasScope(ScopeMedicalView):
		return Minimal
	case ctx.hasAdminRole():
		return Partial
	default:
		return Partial
	}
}
