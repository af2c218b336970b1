//go:build integration

package clearance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
	"github.com/FedassaMeg/haven-sub012/pkg/testutil/containers"
)

type PostgresStoresIntegrationSuite struct {
	suite.Suite
	pg         *containers.PostgresContainer
	clearances *clearance.PostgresClearanceStore
	configs    *clearance.PostgresConfigStore
	ctx        context.Context
}

func TestPostgresStoresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoresIntegrationSuite))
}

func (s *PostgresStoresIntegrationSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.clearances = clearance.NewPostgresClearanceStore(s.pg.Pool)
	s.configs = clearance.NewPostgresConfigStore(s.pg.Pool)
	s.ctx = context.Background()
}

func (s *PostgresStoresIntegrationSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, "TRUNCATE security_clearances, tenant_export_configurations")
	s.Require().NoError(err)
}

func (s *PostgresStoresIntegrationSuite) TestSaveAndFindClearance() {
	granted, err := clearance.Grant(
		domain.NewActorID(),
		[]policy.Role{policy.RoleAttorney},
		[]clearance.Scope{clearance.ScopeLegalSubpoena},
		domain.NewActorID(),
		"subpoena 2026-cv-1187",
		24,
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.clearances.Save(s.ctx, granted))

	found, err := s.clearances.FindByID(s.ctx, granted.ID)
	s.Require().NoError(err)
	s.Equal(granted.UserID, found.UserID)
	s.Equal(granted.Roles, found.Roles)
	s.Equal(granted.Scopes, found.Scopes)
	s.Equal(granted.Justification, found.Justification)
	s.WithinDuration(granted.ExpiresAt, found.ExpiresAt, time.Millisecond)
}

func (s *PostgresStoresIntegrationSuite) TestFindLatestForUser() {
	user := domain.NewActorID()
	grantedBy := domain.NewActorID()

	now := time.Now().UTC()
	first, err := clearance.Grant(user, []policy.Role{policy.RoleDataAnalyst},
		[]clearance.Scope{clearance.ScopeResearchIRB}, grantedBy, "study A", 4, now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.clearances.Save(s.ctx, first))

	// Later grant supersedes for lookup purposes; the first row stays.
	second, err := clearance.Grant(user, []policy.Role{policy.RoleDataAnalyst},
		[]clearance.Scope{clearance.ScopeResearchIRB}, grantedBy, "study B", 4, now)
	s.Require().NoError(err)
	s.Require().NoError(s.clearances.Save(s.ctx, second))

	latest, err := s.clearances.FindLatestForUser(s.ctx, user)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)
}

func (s *PostgresStoresIntegrationSuite) TestFindMissingClearance() {
	_, err := s.clearances.FindByID(s.ctx, domain.NewClearanceID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoresIntegrationSuite) TestConfigUpsert() {
	tenant := domain.NewTenantID()
	config := clearance.DefaultConfiguration(tenant)
	s.Require().NoError(s.configs.Save(s.ctx, config))

	config.HashBehavior = clearance.ConsentBased
	config.ClearanceValidityHours = 4
	s.Require().NoError(s.configs.Save(s.ctx, config))

	found, err := s.configs.FindByTenant(s.ctx, tenant)
	s.Require().NoError(err)
	s.Equal(clearance.ConsentBased, found.HashBehavior)
	s.Equal(4, found.ClearanceValidityHours)
	s.Equal(config.RequiredScopesForUnhashed, found.RequiredScopesForUnhashed)
}

func (s *PostgresStoresIntegrationSuite) TestConfigMissingTenant() {
	_, err := s.configs.FindByTenant(s.ctx, domain.NewTenantID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
