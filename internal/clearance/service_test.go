package clearance

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
)

type fakeAudit struct {
	grants      int
	revocations int
	decisions   []PolicyDecision
	fail        error
}

func (f *fakeAudit) ClearanceGranted(context.Context, SecurityClearance) error {
	if f.fail != nil {
		return f.fail
	}
	f.grants++
	return nil
}

func (f *fakeAudit) ClearanceRevoked(context.Context, domain.ClearanceID, domain.ActorID, string) error {
	if f.fail != nil {
		return f.fail
	}
	f.revocations++
	return nil
}

func (f *fakeAudit) ExportPolicyEvaluated(_ context.Context, _ domain.TenantID, _ domain.ActorID, decision PolicyDecision) error {
	if f.fail != nil {
		return f.fail
	}
	f.decisions = append(f.decisions, decision)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryClearanceStore
	configs *InMemoryConfigStore
	audit   *fakeAudit
	service *Service
	tenant  domain.TenantID
	actor   domain.ActorID
	admin   domain.ActorID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryClearanceStore()
	s.configs = NewInMemoryConfigStore()
	s.audit = &fakeAudit{}
	s.service = NewService(s.store, s.configs, s.audit, slog.Default())
	s.tenant = domain.NewTenantID()
	s.actor = domain.NewActorID()
	s.admin = domain.NewActorID()
}

func (s *ServiceSuite) consentBasedTenant() {
	config := DefaultConfiguration(s.tenant)
	config.HashBehavior = ConsentBased
	s.Require().NoError(s.configs.Save(s.ctx, config))
}

func (s *ServiceSuite) TestGrantUsesTenantValidity() {
	config := DefaultConfiguration(s.tenant)
	config.ClearanceValidityHours = 4
	s.Require().NoError(s.configs.Save(s.ctx, config))

	clearance, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor,
		[]policy.Role{policy.RoleAdministrator}, []Scope{ScopePIIDisclosure}, s.admin, "court order")
	s.Require().NoError(err)

	s.Equal(4.0, clearance.ExpiresAt.Sub(clearance.GrantedAt).Hours())
	s.Equal(1, s.audit.grants)

	stored, err := s.store.FindByID(s.ctx, clearance.ID)
	s.Require().NoError(err)
	s.Equal(clearance.ID, stored.ID)
}

func (s *ServiceSuite) TestGrantWindowComesFromServiceClock() {
	frozen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return frozen }

	clearance, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor,
		nil, []Scope{ScopePIIDisclosure}, s.admin, "court order")
	s.Require().NoError(err)

	s.Equal(frozen, clearance.GrantedAt)
	s.Equal(frozen.Add(24*time.Hour), clearance.ExpiresAt)
}

func (s *ServiceSuite) TestGrantFailsClosedOnAuditFailure() {
	s.audit.fail = errors.New("audit store down")

	_, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor, nil, []Scope{ScopePIIDisclosure}, s.admin, "court order")
	s.Error(err)

	_, err = s.store.FindLatestForUser(s.ctx, s.actor)
	s.Error(err)
}

func (s *ServiceSuite) TestEvaluateDefaultTenantDenies() {
	decision, err := s.service.EvaluateUnhashedExport(s.ctx, s.tenant, s.actor,
		[]Scope{ScopePIIDisclosure, ScopeHUDReporting})
	s.Require().NoError(err)

	s.False(decision.Permit)
	s.Equal(RuleExportHashPolicy, decision.Rule)
	s.Equal(PolicyRuleVersion, decision.Version)
	s.Equal("tenant policy prohibits unhashed exports", decision.Reason)
	s.Equal("ALWAYS_HASH", decision.Metadata["hashBehavior"])
	s.Len(s.audit.decisions, 1)
}

func (s *ServiceSuite) TestEvaluateConsentBasedPermit() {
	s.consentBasedTenant()
	_, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor, nil, []Scope{ScopePIIDisclosure}, s.admin, "HUD APR")
	s.Require().NoError(err)

	decision, err := s.service.EvaluateUnhashedExport(s.ctx, s.tenant, s.actor,
		[]Scope{ScopePIIDisclosure, ScopeHUDReporting})
	s.Require().NoError(err)

	s.True(decision.Permit)
	s.Equal("requirements satisfied", decision.Reason)
}

func (s *ServiceSuite) TestEvaluateNamesMissingScopes() {
	s.consentBasedTenant()
	_, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor, nil, []Scope{ScopePIIDisclosure}, s.admin, "HUD APR")
	s.Require().NoError(err)

	decision, err := s.service.EvaluateUnhashedExport(s.ctx, s.tenant, s.actor, []Scope{ScopePIIDisclosure})
	s.Require().NoError(err)

	s.False(decision.Permit)
	s.Equal("missing required scopes: HUD_REPORTING", decision.Reason)
}

func (s *ServiceSuite) TestRevocationEvictsClearance() {
	s.consentBasedTenant()
	clearance, err := s.service.GrantClearance(s.ctx, s.tenant, s.actor, nil, []Scope{ScopePIIDisclosure}, s.admin, "HUD APR")
	s.Require().NoError(err)

	s.Require().NoError(s.service.RevokeClearance(s.ctx, clearance.ID, s.admin, "employment ended"))
	s.Equal(1, s.audit.revocations)

	decision, err := s.service.EvaluateUnhashedExport(s.ctx, s.tenant, s.actor,
		[]Scope{ScopePIIDisclosure, ScopeHUDReporting})
	s.Require().NoError(err)
	s.False(decision.Permit)
	s.Equal("no security clearance on file", decision.Reason)

	s.Run("stored grant is untouched", func() {
		stored, err := s.store.FindByID(s.ctx, clearance.ID)
		s.Require().NoError(err)
		s.Equal(clearance.Justification, stored.Justification)
	})
}

func (s *ServiceSuite) TestRevokeUnknownClearance() {
	err := s.service.RevokeClearance(s.ctx, domain.NewClearanceID(), s.admin, "typo")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestEvaluateFailsClosedOnAuditFailure() {
	s.audit.fail = errors.New("audit store down")

	_, err := s.service.EvaluateUnhashedExport(s.ctx, s.tenant, s.actor, nil)
	s.Error(err)
}
