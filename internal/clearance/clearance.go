// Package clearance decides whether an export may carry unhashed client
// identifiers. Tenants set the policy; individual actors hold time-boxed
// clearances that can satisfy it.
package clearance

import (
	"strings"
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

// Scope is a clearance capability. Scopes are granted, never inferred
// from roles.
type Scope string

const (
	ScopePIIDisclosure Scope = "PII_DISCLOSURE"
	ScopeVAWAOverride  Scope = "VAWA_OVERRIDE"
	ScopeLegalSubpoena Scope = "LEGAL_SUBPOENA"
	ScopeResearchIRB   Scope = "RESEARCH_IRB"
	ScopeHUDReporting  Scope = "HUD_REPORTING"
)

// unhashedAuthorizing is the fixed set of scopes that can justify an
// unhashed identifier leaving the system.
var unhashedAuthorizing = map[Scope]bool{
	ScopePIIDisclosure: true,
	ScopeVAWAOverride:  true,
	ScopeLegalSubpoena: true,
	ScopeResearchIRB:   true,
}

// SecurityClearance is an immutable time-boxed grant. Revocation evicts
// it from the validity cache rather than mutating the record, so the
// grant itself remains intact for the audit trail.
type SecurityClearance struct {
	ID            domain.ClearanceID
	UserID        domain.ActorID
	Roles         []policy.Role
	Scopes        []Scope
	GrantedBy     domain.ActorID
	Justification string
	GrantedAt     time.Time
	ExpiresAt     time.Time
}

// Grant issues a clearance valid for validHours from now. A justification
// is mandatory: clearances exist to be explained to an auditor.
func Grant(user domain.ActorID, roles []policy.Role, scopes []Scope, grantedBy domain.ActorID, justification string, validHours int, now time.Time) (SecurityClearance, error) {
	if user.IsNil() || grantedBy.IsNil() {
		return SecurityClearance{}, dErrors.New(dErrors.CodeInvalidInput, "clearance requires user and granter")
	}
	if strings.TrimSpace(justification) == "" {
		return SecurityClearance{}, dErrors.New(dErrors.CodeInvalidInput, "clearance requires a justification")
	}
	if validHours <= 0 {
		return SecurityClearance{}, dErrors.New(dErrors.CodeInvalidInput, "clearance validity must be positive")
	}
	return SecurityClearance{
		ID:            domain.NewClearanceID(),
		UserID:        user,
		Roles:         roles,
		Scopes:        scopes,
		GrantedBy:     grantedBy,
		Justification: justification,
		GrantedAt:     now,
		ExpiresAt:     now.Add(time.Duration(validHours) * time.Hour),
	}, nil
}

// IsValid reports whether the clearance is still in its validity window.
func (c SecurityClearance) IsValid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

func (c SecurityClearance) HasScope(scope Scope) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AuthorizesUnhashedExports reports whether the clearance is valid and
// carries at least one scope from the authorizing set.
func (c SecurityClearance) AuthorizesUnhashedExports(now time.Time) bool {
	if !c.IsValid(now) {
		return false
	}
	for _, s := range c.Scopes {
		if unhashedAuthorizing[s] {
			return true
		}
	}
	return false
}
