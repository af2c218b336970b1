// Package notes holds restricted case notes: counseling, legal, safety,
// and medical narrative that carries its own visibility rules and a seal
// mechanism for court holds.
package notes

import (
	"time"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type NoteType string

const (
	TypeStandard               NoteType = "STANDARD"
	TypeCounseling             NoteType = "COUNSELING"
	TypePrivilegedCounseling   NoteType = "PRIVILEGED_COUNSELING"
	TypeLegalAdvocacy          NoteType = "LEGAL_ADVOCACY"
	TypeAttorneyClient         NoteType = "ATTORNEY_CLIENT"
	TypeSafetyPlan             NoteType = "SAFETY_PLAN"
	TypeMedical                NoteType = "MEDICAL"
	TypeTherapeutic            NoteType = "THERAPEUTIC"
	TypeInternalAdmin          NoteType = "INTERNAL_ADMIN"
	TypeWorkflowProgress       NoteType = "WORKFLOW_PROGRESS"
	TypeComplianceVerification NoteType = "COMPLIANCE_VERIFICATION"
	TypeAlert                  NoteType = "ALERT"
	TypeInvestigationUpdate    NoteType = "INVESTIGATION_UPDATE"
	TypeMandatedReport         NoteType = "MANDATED_REPORT"
)

type VisibilityScope string

const (
	ScopePublic         VisibilityScope = "PUBLIC"
	ScopeCaseTeam       VisibilityScope = "CASE_TEAM"
	ScopeClinicalOnly   VisibilityScope = "CLINICAL_ONLY"
	ScopeLegalTeam      VisibilityScope = "LEGAL_TEAM"
	ScopeSafetyTeam     VisibilityScope = "SAFETY_TEAM"
	ScopeMedicalTeam    VisibilityScope = "MEDICAL_TEAM"
	ScopeAdminOnly      VisibilityScope = "ADMIN_ONLY"
	ScopeAuthorOnly     VisibilityScope = "AUTHOR_ONLY"
	ScopeAttorneyClient VisibilityScope = "ATTORNEY_CLIENT"
	ScopeCustom         VisibilityScope = "CUSTOM"
)

// defaultScopes maps each note type to the visibility it gets when the
// author does not choose one.
var defaultScopes = map[NoteType]VisibilityScope{
	TypeStandard:               ScopeCaseTeam,
	TypeCounseling:             ScopeClinicalOnly,
	TypePrivilegedCounseling:   ScopeAuthorOnly,
	TypeLegalAdvocacy:          ScopeLegalTeam,
	TypeAttorneyClient:         ScopeAttorneyClient,
	TypeSafetyPlan:             ScopeSafetyTeam,
	TypeMedical:                ScopeMedicalTeam,
	TypeTherapeutic:            ScopeClinicalOnly,
	TypeInternalAdmin:          ScopeAdminOnly,
	TypeWorkflowProgress:       ScopeCaseTeam,
	TypeComplianceVerification: ScopeAdminOnly,
	TypeAlert:                  ScopeAdminOnly,
	TypeInvestigationUpdate:    ScopeLegalTeam,
	TypeMandatedReport:         ScopeLegalTeam,
}

// DefaultScope returns the visibility a note type carries by default.
func (t NoteType) DefaultScope() VisibilityScope {
	if scope, ok := defaultScopes[t]; ok {
		return scope
	}
	return ScopeAuthorOnly
}

// scopeViewers maps a visibility scope to the roles it admits. Scopes
// absent here (AUTHOR_ONLY, ATTORNEY_CLIENT, CUSTOM) have identity-based
// rules handled in IsVisibleTo.
var scopeViewers = map[VisibilityScope][]policy.Role{
	ScopeCaseTeam:     {policy.RoleCaseManager, policy.RoleSupervisor},
	ScopeClinicalOnly: {policy.RoleClinician, policy.RoleTherapist, policy.RoleCounselor, policy.RoleDVCounselor},
	ScopeLegalTeam:    {policy.RoleLegalAdvocate, policy.RoleAttorney},
	ScopeSafetyTeam:   {policy.RoleSafetySpecialist, policy.RoleCrisisCounselor},
	ScopeMedicalTeam:  {policy.RoleNurse, policy.RoleDoctor, policy.RoleMedicalAdvocate},
	ScopeAdminOnly:    {policy.RoleAdministrator, policy.RoleSupervisor},
}

// Seal captures an active hold on a note. Temporary seals carry an expiry
// and lapse on read; permanent seals lift only through Unseal.
type Seal struct {
	SealedBy   domain.ActorID
	SealedAt   time.Time
	Reason     string
	LegalBasis string
	Temporary  bool
	ExpiresAt  time.Time
}

func (s Seal) expired(now time.Time) bool {
	return s.Temporary && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// RestrictedNote is the aggregate. Sealing is a strict two-state machine:
// an unsealed note can be sealed, a sealed note can be unsealed, and
// nothing else is a transition.
type RestrictedNote struct {
	ID                domain.NoteID
	ClientID          domain.ClientID
	Type              NoteType
	Title             string
	Content           string
	AuthorID          domain.ActorID
	AuthorName        string
	CreatedAt         time.Time
	LastModified      time.Time
	AuthorizedViewers []domain.ActorID
	Scope             VisibilityScope

	Sealed bool
	Seal   Seal
}

// NewNote creates a note, defaulting the visibility scope from the note
// type when the author does not pick one.
func NewNote(clientID domain.ClientID, noteType NoteType, title, content string, author domain.ActorID, authorName string, viewers []domain.ActorID, scope VisibilityScope) (RestrictedNote, error) {
	if content == "" {
		return RestrictedNote{}, dErrors.New(dErrors.CodeInvalidInput, "note content is required")
	}
	if author.IsNil() {
		return RestrictedNote{}, dErrors.New(dErrors.CodeInvalidInput, "note author is required")
	}
	if scope == "" {
		scope = noteType.DefaultScope()
	}
	now := time.Now()
	return RestrictedNote{
		ID:                domain.NewNoteID(),
		ClientID:          clientID,
		Type:              noteType,
		Title:             title,
		Content:           content,
		AuthorID:          author,
		AuthorName:        authorName,
		CreatedAt:         now,
		LastModified:      now,
		AuthorizedViewers: viewers,
		Scope:             scope,
	}, nil
}

// ApplySeal transitions UNSEALED -> SEALED.
func (n *RestrictedNote) ApplySeal(sealedBy domain.ActorID, reason, legalBasis string, temporary bool, expiresAt time.Time) error {
	if n.Sealed {
		return dErrors.New(dErrors.CodeInvariantViolation, "note is already sealed")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "seal reason is required")
	}
	if temporary && expiresAt.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "temporary seal requires an expiry")
	}
	n.Sealed = true
	n.Seal = Seal{
		SealedBy:   sealedBy,
		SealedAt:   time.Now(),
		Reason:     reason,
		LegalBasis: legalBasis,
		Temporary:  temporary,
		ExpiresAt:  expiresAt,
	}
	return nil
}

// ApplyUnseal transitions SEALED -> UNSEALED.
func (n *RestrictedNote) ApplyUnseal() error {
	if !n.Sealed {
		return dErrors.New(dErrors.CodeInvariantViolation, "note is not sealed")
	}
	n.Sealed = false
	n.Seal = Seal{}
	return nil
}

// UpdateContent rejects edits to sealed notes.
func (n *RestrictedNote) UpdateContent(content string, now time.Time) error {
	if n.effectivelySealed(now) {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot update a sealed note")
	}
	if content == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "note content is required")
	}
	n.Content = content
	n.LastModified = now
	return nil
}

// effectivelySealed reports the seal state as of now. A lapsed temporary
// seal no longer restricts reads; the state flips durably the next time
// the note is loaded through the service.
func (n *RestrictedNote) effectivelySealed(now time.Time) bool {
	return n.Sealed && !n.Seal.expired(now)
}

// IsVisibleTo evaluates visibility in fixed order: seal state first, then
// the explicit viewer list, then privileged-counseling qualification, then
// the scope's role table.
func (n *RestrictedNote) IsVisibleTo(actor domain.ActorID, roles []policy.Role, now time.Time) bool {
	if n.effectivelySealed(now) && actor != n.Seal.SealedBy {
		return false
	}

	if len(n.AuthorizedViewers) > 0 {
		return n.hasViewer(actor)
	}

	if n.Type == TypePrivilegedCounseling {
		return hasAnyRole(roles, policy.RoleDVCounselor, policy.RoleLicensedClinician) || actor == n.AuthorID
	}

	switch n.Scope {
	case ScopePublic:
		return true
	case ScopeAuthorOnly:
		return actor == n.AuthorID
	case ScopeAttorneyClient:
		return hasAnyRole(roles, policy.RoleAttorney) || actor == n.AuthorID
	case ScopeCustom:
		return n.hasViewer(actor)
	default:
		return hasAnyRole(roles, scopeViewers[n.Scope]...)
	}
}

func (n *RestrictedNote) hasViewer(actor domain.ActorID) bool {
	for _, v := range n.AuthorizedViewers {
		if v == actor {
			return true
		}
	}
	return false
}

func hasAnyRole(held []policy.Role, wanted ...policy.Role) bool {
	for _, w := range wanted {
		for _, h := range held {
			if h == w {
				return true
			}
		}
	}
	return false
}
