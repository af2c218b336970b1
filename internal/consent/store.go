package consent

import (
	"context"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// Store caches consent records received from the consent component.
type Store interface {
	Save(ctx context.Context, record Record) error
	FindByID(ctx context.Context, id domain.ConsentID) (Record, error)
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]Record, error)
}
