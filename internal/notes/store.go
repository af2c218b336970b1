package notes

import (
	"context"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

type Store interface {
	Save(ctx context.Context, note RestrictedNote) error
	FindByID(ctx context.Context, id domain.NoteID) (RestrictedNote, error)
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]RestrictedNote, error)
}
