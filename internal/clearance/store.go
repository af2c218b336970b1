package clearance

import (
	"context"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// ClearanceStore persists issued clearances. Records are append-only:
// revocation is handled in the service layer, never by mutating or
// removing a stored grant.
type ClearanceStore interface {
	Save(ctx context.Context, clearance SecurityClearance) error
	FindByID(ctx context.Context, id domain.ClearanceID) (SecurityClearance, error)
	// FindLatestForUser returns the most recently granted clearance for
	// the user, expired or not.
	FindLatestForUser(ctx context.Context, user domain.ActorID) (SecurityClearance, error)
}

// ConfigStore persists per-tenant export configurations.
type ConfigStore interface {
	Save(ctx context.Context, config TenantExportConfiguration) error
	FindByTenant(ctx context.Context, tenant domain.TenantID) (TenantExportConfiguration, error)
}
