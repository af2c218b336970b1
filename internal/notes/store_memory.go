package notes

import (
	"context"
	"sort"
	"sync"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	notes map[domain.NoteID]RestrictedNote
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notes: make(map[domain.NoteID]RestrictedNote)}
}

func (s *InMemoryStore) Save(_ context.Context, note RestrictedNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = note
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.NoteID) (RestrictedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return RestrictedNote{}, sentinel.ErrNotFound
	}
	return note, nil
}

func (s *InMemoryStore) ListByClient(_ context.Context, clientID domain.ClientID) ([]RestrictedNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RestrictedNote
	for _, note := range s.notes {
		if note.ClientID == clientID {
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
