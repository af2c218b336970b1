// Package pii classifies data fields by sensitivity and defines the access
// levels the redaction and export policies are expressed in.
package pii

// Category is the sensitivity class of a field, derived from its semantic
// name. Classification is total: unmatched fields fall through to
// CategoryServiceData.
type Category string

const (
	CategoryDirectIdentifier   Category = "DIRECT_IDENTIFIER"
	CategoryQuasiIdentifier    Category = "QUASI_IDENTIFIER"
	CategoryContactInfo        Category = "CONTACT_INFO"
	CategorySensitiveAttribute Category = "SENSITIVE_ATTRIBUTE"
	CategoryHouseholdInfo      Category = "HOUSEHOLD_INFO"
	CategoryServiceData        Category = "SERVICE_DATA"
)

// AccessLevel orders how much protection an actor's access satisfies.
// Higher levels satisfy lower requirements.
type AccessLevel int

const (
	LevelPublic AccessLevel = iota
	LevelInternal
	LevelRestricted
	LevelConfidential
	LevelHighlyConfidential
)

func (l AccessLevel) String() string {
	switch l {
	case LevelPublic:
		return "PUBLIC"
	case LevelInternal:
		return "INTERNAL"
	case LevelRestricted:
		return "RESTRICTED"
	case LevelConfidential:
		return "CONFIDENTIAL"
	case LevelHighlyConfidential:
		return "HIGHLY_CONFIDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// Satisfies reports whether an actor holding level l may access data that
// requires the given level.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	return l >= required
}

// MinimumLevel returns the minimum access level required to see a category
// unredacted. Implements the "minimum necessary" defaults.
func MinimumLevel(c Category) AccessLevel {
	switch c {
	case CategoryDirectIdentifier:
		return LevelHighlyConfidential
	case CategorySensitiveAttribute:
		return LevelConfidential
	case CategoryQuasiIdentifier, CategoryContactInfo, CategoryHouseholdInfo:
		return LevelRestricted
	default:
		return LevelInternal
	}
}
