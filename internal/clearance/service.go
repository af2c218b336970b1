package clearance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FedassaMeg/haven-sub012/internal/policy"
	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	dErrors "github.com/FedassaMeg/haven-sub012/pkg/domain-errors"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

const (
	// RuleExportHashPolicy names the rule every hash-policy decision cites.
	RuleExportHashPolicy = "EXPORT_HASH_POLICY"
	// PolicyRuleVersion is bumped when the decision logic changes, so old
	// audit entries stay interpretable.
	PolicyRuleVersion = "1.0"
)

// PolicyDecision is the recorded outcome of one export hash policy
// evaluation.
type PolicyDecision struct {
	Permit      bool
	Rule        string
	Version     string
	Reason      string
	Metadata    map[string]string
	EvaluatedAt time.Time
}

// AuditRecorder durably appends clearance lifecycle and decision events.
// Every method is fail-closed at the call site: a failed append aborts the
// operation that triggered it.
type AuditRecorder interface {
	ClearanceGranted(ctx context.Context, clearance SecurityClearance) error
	ClearanceRevoked(ctx context.Context, clearanceID domain.ClearanceID, revokedBy domain.ActorID, reason string) error
	ExportPolicyEvaluated(ctx context.Context, tenant domain.TenantID, actor domain.ActorID, decision PolicyDecision) error
}

// Service issues and revokes clearances and evaluates the export hash
// policy. Revocations live only in the validity cache: the stored grant is
// immutable, and a revoked ID simply stops resolving.
type Service struct {
	clearances ClearanceStore
	configs    ConfigStore
	audit      AuditRecorder
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	revoked map[domain.ClearanceID]bool
}

func NewService(clearances ClearanceStore, configs ConfigStore, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		clearances: clearances,
		configs:    configs,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
		revoked:    make(map[domain.ClearanceID]bool),
	}
}

// GrantClearance issues a clearance whose validity window comes from the
// tenant configuration. The audit append happens before the grant is
// persisted; if either fails the clearance does not exist.
func (s *Service) GrantClearance(ctx context.Context, tenant domain.TenantID, user domain.ActorID, roles []policy.Role, scopes []Scope, grantedBy domain.ActorID, justification string) (SecurityClearance, error) {
	config := s.tenantConfig(ctx, tenant)

	clearance, err := Grant(user, roles, scopes, grantedBy, justification, config.ClearanceValidityHours, s.now())
	if err != nil {
		return SecurityClearance{}, err
	}
	if err := s.audit.ClearanceGranted(ctx, clearance); err != nil {
		return SecurityClearance{}, fmt.Errorf("record clearance grant: %w", err)
	}
	if err := s.clearances.Save(ctx, clearance); err != nil {
		return SecurityClearance{}, fmt.Errorf("persist clearance: %w", err)
	}

	grantsTotal.Inc()
	s.logger.InfoContext(ctx, "clearance granted",
		"clearance_id", clearance.ID, "user_id", user, "granted_by", grantedBy,
		"expires_at", clearance.ExpiresAt)
	return clearance, nil
}

// RevokeClearance evicts a clearance from the validity cache. The stored
// grant is untouched; subsequent lookups treat the user as uncleared.
func (s *Service) RevokeClearance(ctx context.Context, clearanceID domain.ClearanceID, revokedBy domain.ActorID, reason string) error {
	if _, err := s.clearances.FindByID(ctx, clearanceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "clearance not found")
		}
		return fmt.Errorf("load clearance: %w", err)
	}
	if err := s.audit.ClearanceRevoked(ctx, clearanceID, revokedBy, reason); err != nil {
		return fmt.Errorf("record clearance revocation: %w", err)
	}

	s.mu.Lock()
	s.revoked[clearanceID] = true
	s.mu.Unlock()

	revocationsTotal.Inc()
	s.logger.InfoContext(ctx, "clearance revoked",
		"clearance_id", clearanceID, "revoked_by", revokedBy, "reason", reason)
	return nil
}

// EvaluateUnhashedExport decides whether the actor may export unhashed
// identifiers under the tenant's policy. The decision, permit or deny, is
// audited before it is returned; an unrecordable decision is no decision.
func (s *Service) EvaluateUnhashedExport(ctx context.Context, tenant domain.TenantID, actor domain.ActorID, scopes []Scope) (PolicyDecision, error) {
	ctx, span := otel.Tracer("clearance").Start(ctx, "clearance.EvaluateUnhashedExport")
	defer span.End()

	config := s.tenantConfig(ctx, tenant)
	clearance := s.activeClearance(ctx, actor)
	now := s.now()

	reason := config.UnhashedRejectionReason(scopes, clearance, now)
	decision := PolicyDecision{
		Permit:      reason == "",
		Rule:        RuleExportHashPolicy,
		Version:     PolicyRuleVersion,
		Reason:      reason,
		EvaluatedAt: now,
		Metadata: map[string]string{
			"hashBehavior": string(config.HashBehavior),
			"tenantId":     tenant.String(),
		},
	}
	if decision.Permit {
		decision.Reason = "requirements satisfied"
	}
	span.SetAttributes(
		attribute.Bool("decision.permit", decision.Permit),
		attribute.String("decision.rule", decision.Rule),
	)

	if err := s.audit.ExportPolicyEvaluated(ctx, tenant, actor, decision); err != nil {
		return PolicyDecision{}, fmt.Errorf("record policy decision: %w", err)
	}

	outcome := "deny"
	if decision.Permit {
		outcome = "permit"
	}
	decisionsTotal.WithLabelValues(outcome).Inc()
	if !decision.Permit && config.AlertOnDeniedExport {
		s.logger.WarnContext(ctx, "unhashed export denied",
			"tenant_id", tenant, "actor_id", actor, "reason", reason)
	}
	return decision, nil
}

// tenantConfig loads the tenant's export configuration, falling back to
// the restrictive default when none is stored or the store is unreachable.
func (s *Service) tenantConfig(ctx context.Context, tenant domain.TenantID) TenantExportConfiguration {
	config, err := s.configs.FindByTenant(ctx, tenant)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "tenant config lookup failed, using default",
				"tenant_id", tenant, "error", err)
		}
		return DefaultConfiguration(tenant)
	}
	return config
}

// activeClearance resolves the actor's latest non-revoked clearance, or
// nil when none applies. Expiry is left to the policy evaluation so the
// rejection reason can distinguish expired from absent.
func (s *Service) activeClearance(ctx context.Context, actor domain.ActorID) *SecurityClearance {
	clearance, err := s.clearances.FindLatestForUser(ctx, actor)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "clearance lookup failed",
				"actor_id", actor, "error", err)
		}
		return nil
	}
	s.mu.RLock()
	revoked := s.revoked[clearance.ID]
	s.mu.RUnlock()
	if revoked {
		return nil
	}
	return &clearance
}
