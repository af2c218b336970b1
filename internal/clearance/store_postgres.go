package clearance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

// PostgresClearanceStore persists clearances in PostgreSQL. Grants are
// inserted and read, never updated or deleted.
type PostgresClearanceStore struct {
	pool *pgxpool.Pool
}

func NewPostgresClearanceStore(pool *pgxpool.Pool) *PostgresClearanceStore {
	return &PostgresClearanceStore{pool: pool}
}

func (s *PostgresClearanceStore) Save(ctx context.Context, clearance SecurityClearance) error {
	query := `
		INSERT INTO security_clearances
			(id, user_id, roles, scopes, granted_by, justification, granted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		clearance.ID.String(),
		clearance.UserID.String(),
		rolesToStrings(clearance.Roles),
		scopesToStrings(clearance.Scopes),
		clearance.GrantedBy.String(),
		clearance.Justification,
		clearance.GrantedAt,
		clearance.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save clearance: %w", err)
	}
	return nil
}

func (s *PostgresClearanceStore) FindByID(ctx context.Context, clearanceID domain.ClearanceID) (SecurityClearance, error) {
	query := `
		SELECT id, user_id, roles, scopes, granted_by, justification, granted_at, expires_at
		FROM security_clearances
		WHERE id = $1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, clearanceID.String()))
}

func (s *PostgresClearanceStore) FindLatestForUser(ctx context.Context, user domain.ActorID) (SecurityClearance, error) {
	query := `
		SELECT id, user_id, roles, scopes, granted_by, justification, granted_at, expires_at
		FROM security_clearances
		WHERE user_id = $1
		ORDER BY granted_at DESC
		LIMIT 1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, user.String()))
}

func (s *PostgresClearanceStore) scanOne(row pgx.Row) (SecurityClearance, error) {
	var (
		clearance          SecurityClearance
		idStr, userStr     string
		grantedByStr       string
		roleStrs, scopeStr []string
	)
	err := row.Scan(&idStr, &userStr, &roleStrs, &scopeStr,
		&grantedByStr, &clearance.Justification, &clearance.GrantedAt, &clearance.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SecurityClearance{}, sentinel.ErrNotFound
	}
	if err != nil {
		return SecurityClearance{}, fmt.Errorf("scan clearance: %w", err)
	}
	if clearance.ID, err = domain.ParseClearanceID(idStr); err != nil {
		return SecurityClearance{}, fmt.Errorf("parse clearance id: %w", err)
	}
	if clearance.UserID, err = domain.ParseActorID(userStr); err != nil {
		return SecurityClearance{}, fmt.Errorf("parse user id: %w", err)
	}
	if clearance.GrantedBy, err = domain.ParseActorID(grantedByStr); err != nil {
		return SecurityClearance{}, fmt.Errorf("parse granter id: %w", err)
	}
	clearance.Roles = stringsToRoles(roleStrs)
	clearance.Scopes = stringsToScopes(scopeStr)
	return clearance, nil
}

// PostgresConfigStore persists tenant export configurations.
type PostgresConfigStore struct {
	pool *pgxpool.Pool
}

func NewPostgresConfigStore(pool *pgxpool.Pool) *PostgresConfigStore {
	return &PostgresConfigStore{pool: pool}
}

func (s *PostgresConfigStore) Save(ctx context.Context, config TenantExportConfiguration) error {
	query := `
		INSERT INTO tenant_export_configurations
			(tenant_id, hash_behavior, required_scopes, dual_authorization,
			 legal_review, clearance_validity_hours, alert_on_unhashed, alert_on_denied)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id) DO UPDATE SET
			hash_behavior = EXCLUDED.hash_behavior,
			required_scopes = EXCLUDED.required_scopes,
			dual_authorization = EXCLUDED.dual_authorization,
			legal_review = EXCLUDED.legal_review,
			clearance_validity_hours = EXCLUDED.clearance_validity_hours,
			alert_on_unhashed = EXCLUDED.alert_on_unhashed,
			alert_on_denied = EXCLUDED.alert_on_denied
	`
	_, err := s.pool.Exec(ctx, query,
		config.TenantID.String(),
		string(config.HashBehavior),
		scopesToStrings(config.RequiredScopesForUnhashed),
		config.RequireDualAuthorization,
		config.RequireLegalReview,
		config.ClearanceValidityHours,
		config.AlertOnUnhashedExport,
		config.AlertOnDeniedExport,
	)
	if err != nil {
		return fmt.Errorf("save tenant export config: %w", err)
	}
	return nil
}

func (s *PostgresConfigStore) FindByTenant(ctx context.Context, tenant domain.TenantID) (TenantExportConfiguration, error) {
	query := `
		SELECT tenant_id, hash_behavior, required_scopes, dual_authorization,
		       legal_review, clearance_validity_hours, alert_on_unhashed, alert_on_denied
		FROM tenant_export_configurations
		WHERE tenant_id = $1
	`
	var (
		config    TenantExportConfiguration
		tenantStr string
		behavior  string
		scopeStrs []string
	)
	err := s.pool.QueryRow(ctx, query, tenant.String()).Scan(
		&tenantStr, &behavior, &scopeStrs, &config.RequireDualAuthorization,
		&config.RequireLegalReview, &config.ClearanceValidityHours,
		&config.AlertOnUnhashedExport, &config.AlertOnDeniedExport,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return TenantExportConfiguration{}, sentinel.ErrNotFound
	}
	if err != nil {
		return TenantExportConfiguration{}, fmt.Errorf("scan tenant export config: %w", err)
	}
	if config.TenantID, err = domain.ParseTenantID(tenantStr); err != nil {
		return TenantExportConfiguration{}, fmt.Errorf("parse tenant id: %w", err)
	}
	config.HashBehavior = HashBehavior(behavior)
	config.RequiredScopesForUnhashed = stringsToScopes(scopeStrs)
	return config, nil
}

func rolesToStrings(roles []policy.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(strs []string) []policy.Role {
	out := make([]policy.Role, len(strs))
	for i, s := range strs {
		out[i] = policy.Role(s)
	}
	return out
}

func scopesToStrings(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}

func stringsToScopes(strs []string) []Scope {
	out := make([]Scope, len(strs))
	for i, s := range strs {
		out[i] = Scope(s)
	}
	return out
}
