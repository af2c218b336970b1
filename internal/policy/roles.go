// Package policy computes per-field redaction decisions from actor roles,
// consent scopes, and field sensitivity. It is the single place access
// rules live; redaction and export apply its output mechanically.
package policy

// Role is a verified role claim issued by the external identity provider.
type Role string

const (
	RoleCaseManager       Role = "CASE_MANAGER"
	RoleSupervisor        Role = "SUPERVISOR"
	RoleClinician         Role = "CLINICIAN"
	RoleTherapist         Role = "THERAPIST"
	RoleCounselor         Role = "COUNSELOR"
	RoleDVCounselor       Role = "DV_COUNSELOR"
	RoleLicensedClinician Role = "LICENSED_CLINICIAN"
	RoleLegalAdvocate     Role = "LEGAL_ADVOCATE"
	RoleAttorney          Role = "ATTORNEY"
	RoleNurse             Role = "NURSE"
	RoleDoctor            Role = "DOCTOR"
	RoleMedicalAdvocate   Role = "MEDICAL_ADVOCATE"
	RoleSafetySpecialist  Role = "SAFETY_SPECIALIST"
	RoleCrisisCounselor   Role = "CRISIS_COUNSELOR"
	RoleAdministrator     Role = "ADMINISTRATOR"
	RoleDataAnalyst       Role = "DATA_ANALYST"
	RoleExternalPartner   Role = "EXTERNAL_PARTNER"
	RoleCEIntake          Role = "CE_INTAKE"
)

func (r Role) IsClinical() bool {
	switch r {
	case RoleClinician, RoleTherapist, RoleCounselor, RoleDVCounselor, RoleLicensedClinician:
		return true
	}
	return false
}

func (r Role) IsLegal() bool {
	return r == RoleLegalAdvocate || r == RoleAttorney
}

func (r Role) IsMedical() bool {
	return r == RoleNurse || r == RoleDoctor || r == RoleMedicalAdvocate
}

func (r Role) IsAdministrative() bool {
	return r == RoleAdministrator || r == RoleSupervisor || r == RoleDataAnalyst
}

// IsExternalPartner marks roles whose holders sit outside the agency trust
// boundary and therefore receive pseudonymized data by default.
func (r Role) IsExternalPartner() bool {
	return r == RoleExternalPartner || r == RoleCEIntake
}

// ConsentScope is a verified consent claim limiting what a client has
// agreed may be viewed or shared.
type ConsentScope string

const (
	ScopeDVView         ConsentScope = "dv_view"
	ScopeLegalView      ConsentScope = "legal_view"
	ScopeMedicalView    ConsentScope = "medical_view"
	ScopeHMISExport     ConsentScope = "hmis_export"
	ScopeResearchView   ConsentScope = "research_view"
	ScopeCourtTestimony ConsentScope = "court_testimony"
)

var knownScopes = map[string]ConsentScope{
	string(ScopeDVView):         ScopeDVView,
	string(ScopeLegalView):      ScopeLegalView,
	string(ScopeMedicalView):    ScopeMedicalView,
	string(ScopeHMISExport):     ScopeHMISExport,
	string(ScopeResearchView):   ScopeResearchView,
	string(ScopeCourtTestimony): ScopeCourtTestimony,
}

// ParseScopes maps scope claim strings onto known consent scopes.
// Unknown scopes are dropped rather than failing the request: a stale
// token must not grant access it was never meant to carry.
func ParseScopes(raw []string) []ConsentScope {
	scopes := make([]ConsentScope, 0, len(raw))
	for _, s := range raw {
		if scope, ok := knownScopes[s]; ok {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}
