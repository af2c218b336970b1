package policy

import (
	"context"
	"log/slog"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// ChangeKind names the events that make cached permission decisions stale.
type ChangeKind string

const (
	ChangeRoleAssignment    ChangeKind = "role_assignment_changed"
	ChangeConsentRevocation ChangeKind = "consent_revoked"
	ChangePolicyUpdate      ChangeKind = "policy_updated"
)

// ChangeEvent signals that previously resolved decisions for an actor (or,
// for policy updates, for everyone) must be recomputed.
type ChangeEvent struct {
	Kind  ChangeKind
	Actor domain.ActorID
}

// Invalidator subscribes the decision cache to role/consent/policy change
// events, evicting exactly the affected entries. It mirrors the audit
// worker loop: a channel in, a store out, nothing shared.
type Invalidator struct {
	cache  DecisionCache
	inbox  <-chan ChangeEvent
	logger *slog.Logger
}

func NewInvalidator(cache DecisionCache, inbox <-chan ChangeEvent, logger *slog.Logger) *Invalidator {
	return &Invalidator{cache: cache, inbox: inbox, logger: logger}
}

func (i *Invalidator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-i.inbox:
			if err := i.apply(ctx, event); err != nil {
				// Failed eviction means decisions may be stale, which is a
				// correctness problem. Log loudly and keep consuming; the
				// next resolve for the actor will still compute correctly
				// on a cache miss, but hits could be wrong until retry.
				i.logger.ErrorContext(ctx, "decision cache eviction failed",
					"kind", event.Kind,
					"actor", event.Actor,
					"error", err,
				)
			}
		}
	}
}

func (i *Invalidator) apply(ctx context.Context, event ChangeEvent) error {
	switch event.Kind {
	case ChangePolicyUpdate:
		return i.cache.InvalidateAll(ctx)
	default:
		return i.cache.InvalidateActor(ctx, event.Actor)
	}
}
