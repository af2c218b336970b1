package audit

import (
	"context"
	"time"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// Store is the durable, append-only trail. Implementations must not
// expose update or delete paths.
type Store interface {
	Append(ctx context.Context, event Event) error

	ListByResource(ctx context.Context, resourceType, resourceID string) ([]Event, error)
	ListByActor(ctx context.Context, actor domain.ActorID) ([]Event, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Event, error)
	ListByRule(ctx context.Context, rule string) ([]Event, error)
	// ListHighRisk returns events of the fixed high-risk kinds in the
	// window, newest first.
	ListHighRisk(ctx context.Context, from, to time.Time) ([]Event, error)
}
