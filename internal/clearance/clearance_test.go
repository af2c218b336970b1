package clearance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type ClearanceSuite struct {
	suite.Suite
	user      domain.ActorID
	grantedBy domain.ActorID
	now       time.Time
}

func TestClearanceSuite(t *testing.T) {
	suite.Run(t, new(ClearanceSuite))
}

func (s *ClearanceSuite) SetupTest() {
	s.user = domain.NewActorID()
	s.grantedBy = domain.NewActorID()
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ClearanceSuite) grant(scopes []Scope, validHours int) SecurityClearance {
	clearance, err := Grant(s.user, []policy.Role{policy.RoleAdministrator}, scopes, s.grantedBy, "HUD APR submission", validHours, s.now)
	s.Require().NoError(err)
	return clearance
}

func (s *ClearanceSuite) TestGrantValidation() {
	s.Run("requires justification", func() {
		_, err := Grant(s.user, nil, nil, s.grantedBy, "   ", 24, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("requires positive validity", func() {
		_, err := Grant(s.user, nil, nil, s.grantedBy, "reason", 0, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("requires user and granter", func() {
		_, err := Grant(domain.ActorID{}, nil, nil, s.grantedBy, "reason", 24, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ClearanceSuite) TestGrantUsesProvidedClock() {
	clearance := s.grant([]Scope{ScopePIIDisclosure}, 48)

	s.Equal(s.now, clearance.GrantedAt)
	s.Equal(s.now.Add(48*time.Hour), clearance.ExpiresAt)
}

func (s *ClearanceSuite) TestValidityWindow() {
	clearance := s.grant([]Scope{ScopePIIDisclosure}, 24)

	s.True(clearance.IsValid(s.now))
	s.True(clearance.IsValid(clearance.ExpiresAt.Add(-time.Second)))
	s.False(clearance.IsValid(clearance.ExpiresAt))
	s.False(clearance.IsValid(clearance.ExpiresAt.Add(time.Hour)))
}

func (s *ClearanceSuite) TestAuthorizesUnhashedExports() {
	now := s.now

	for _, scope := range []Scope{ScopePIIDisclosure, ScopeVAWAOverride, ScopeLegalSubpoena, ScopeResearchIRB} {
		s.Run(string(scope), func() {
			s.True(s.grant([]Scope{scope}, 24).AuthorizesUnhashedExports(now))
		})
	}

	s.Run("reporting scope alone does not authorize", func() {
		s.False(s.grant([]Scope{ScopeHUDReporting}, 24).AuthorizesUnhashedExports(now))
	})

	s.Run("expired clearance never authorizes", func() {
		clearance := s.grant([]Scope{ScopePIIDisclosure}, 1)
		s.False(clearance.AuthorizesUnhashedExports(clearance.ExpiresAt.Add(time.Minute)))
	})
}
