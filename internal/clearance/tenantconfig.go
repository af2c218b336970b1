package clearance

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// HashBehavior is a tenant's stance on identifier hashing in exports.
type HashBehavior string

const (
	// AlwaysHash: identifiers are hashed in every export, no exception.
	AlwaysHash HashBehavior = "ALWAYS_HASH"
	// ConsentBased: unhashed exports require the configured scopes and a
	// valid authorizing clearance.
	ConsentBased HashBehavior = "CONSENT_BASED"
	// NeverHash: a closed research enclave where identifiers flow as-is.
	NeverHash HashBehavior = "NEVER_HASH"
)

// TenantExportConfiguration governs how a tenant's exports treat client
// identifiers.
type TenantExportConfiguration struct {
	TenantID                  domain.TenantID
	HashBehavior              HashBehavior
	RequiredScopesForUnhashed []Scope
	RequireDualAuthorization  bool
	RequireLegalReview        bool
	ClearanceValidityHours    int
	AlertOnUnhashedExport     bool
	AlertOnDeniedExport       bool
}

// DefaultConfiguration is the posture a tenant gets before an administrator
// touches anything: hash everything, and set the bar for ever changing
// that at disclosure plus reporting authority.
func DefaultConfiguration(tenant domain.TenantID) TenantExportConfiguration {
	return TenantExportConfiguration{
		TenantID:                  tenant,
		HashBehavior:              AlwaysHash,
		RequiredScopesForUnhashed: []Scope{ScopePIIDisclosure, ScopeHUDReporting},
		ClearanceValidityHours:    24,
		AlertOnUnhashedExport:     true,
	}
}

// AllowsUnhashedExport evaluates the tenant policy against the actor's
// scopes and clearance. clearance may be nil when none is on file.
func (c TenantExportConfiguration) AllowsUnhashedExport(scopes []Scope, clearance *SecurityClearance, now time.Time) bool {
	switch c.HashBehavior {
	case NeverHash:
		return true
	case AlwaysHash:
		return false
	case ConsentBased:
		if !hasAllScopes(scopes, c.RequiredScopesForUnhashed) {
			return false
		}
		return clearance != nil && clearance.AuthorizesUnhashedExports(now)
	default:
		return false
	}
}

// UnhashedRejectionReason explains a denial in a fixed order so the same
// situation always produces the same audit text: tenant policy first, then
// scopes, then clearance existence, expiry, and sufficiency. Returns ""
// when the export is allowed.
func (c TenantExportConfiguration) UnhashedRejectionReason(scopes []Scope, clearance *SecurityClearance, now time.Time) string {
	if c.HashBehavior == NeverHash {
		return ""
	}
	if c.HashBehavior == AlwaysHash {
		return "tenant policy prohibits unhashed exports"
	}
	if missing := missingScopes(scopes, c.RequiredScopesForUnhashed); len(missing) > 0 {
		return fmt.Sprintf("missing required scopes: %s", joinScopes(missing))
	}
	if clearance == nil {
		return "no security clearance on file"
	}
	if !clearance.IsValid(now) {
		return "security clearance has expired"
	}
	if !clearance.AuthorizesUnhashedExports(now) {
		return "security clearance does not authorize unhashed exports"
	}
	return ""
}

func hasAllScopes(held, required []Scope) bool {
	return len(missingScopes(held, required)) == 0
}

func missingScopes(held, required []Scope) []Scope {
	heldSet := make(map[Scope]bool, len(held))
	for _, s := range held {
		heldSet[s] = true
	}
	var missing []Scope
	for _, s := range required {
		if !heldSet[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

func joinScopes(scopes []Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
