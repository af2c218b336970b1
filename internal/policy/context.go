package policy

import (
	"github.com/FedassaMeg/haven-sub012/internal/pii"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// AccessContext carries the verified identity, role, and consent claims for
// one request. It is constructed per request from token claims and is never
// persisted; audit entries copy the fields they need.
type AccessContext struct {
	ActorID       domain.ActorID
	ActorName     string
	Roles         []Role
	Scopes        []ConsentScope
	Justification string

	// Request metadata recorded alongside audit events.
	IPAddress string
	SessionID string
	UserAgent string
}

func (c AccessContext) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c AccessContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}

func (c AccessContext) HasScope(scope ConsentScope) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (c AccessContext) hasClinicalRole() bool { return c.anyRole(Role.IsClinical) }
func (c AccessContext) hasLegalRole() bool    { return c.anyRole(Role.IsLegal) }
func (c AccessContext) hasMedicalRole() bool  { return c.anyRole(Role.IsMedical) }
func (c AccessContext) hasAdminRole() bool    { return c.anyRole(Role.IsAdministrative) }

// IsExternalPartner reports whether any held role sits outside the agency
// trust boundary.
func (c AccessContext) IsExternalPartner() bool { return c.anyRole(Role.IsExternalPartner) }

func (c AccessContext) anyRole(pred func(Role) bool) bool {
	for _, r := range c.Roles {
		if pred(r) {
			return true
		}
	}
	return false
}

// CanViewFullPII reports whether the actor may see unredacted direct
// identifiers: a privileged role paired with a matching consent scope.
// External partners never qualify, whatever else they hold.
func (c AccessContext) CanViewFullPII() bool {
	if c.IsExternalPartner() {
		return false
	}
	privileged := c.hasClinicalRole() || c.hasLegalRole() || c.hasMedicalRole()
	consented := c.HasScope(ScopeDVView) || c.HasScope(ScopeLegalView) || c.HasScope(ScopeMedicalView)
	return privileged && consented
}

// CanViewDVNotes reports whether the actor may read confidential DV notes.
func (c AccessContext) CanViewDVNotes() bool {
	return c.HasRole(RoleDVCounselor) && c.HasScope(ScopeDVView)
}

// MaxAccessLevel computes the highest pii.AccessLevel the context satisfies.
// Used by the category-based "minimum necessary" policy.
func (c AccessContext) MaxAccessLevel() pii.AccessLevel {
	if c.CanViewFullPII() {
		return pii.LevelHighlyConfidential
	}
	if c.IsExternalPartner() {
		return pii.LevelPublic
	}
	level := pii.LevelPublic
	for _, r := range c.Roles {
		if l := roleCeiling(r); l > level {
			level = l
		}
	}
	return level
}

func roleCeiling(r Role) pii.AccessLevel {
	switch {
	case r.IsClinical(), r.IsLegal(), r.IsMedical():
		return pii.LevelConfidential
	case r == RoleAdministrator, r == RoleSupervisor:
		return pii.LevelConfidential
	case r == RoleCaseManager, r == RoleSafetySpecialist, r == RoleCrisisCounselor:
		return pii.LevelRestricted
	case r == RoleDataAnalyst:
		return pii.LevelInternal
	default:
		return pii.LevelPublic
	}
}
