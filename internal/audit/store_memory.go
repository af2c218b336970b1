package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// InMemoryStore keeps the trail in process memory, for tests and local
// development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByResource(_ context.Context, resourceType, resourceID string) ([]Event, error) {
	return s.filter(func(e Event) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	}), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor domain.ActorID) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.ActorID == actor }), nil
}

func (s *InMemoryStore) ListByDateRange(_ context.Context, from, to time.Time) ([]Event, error) {
	return s.filter(func(e Event) bool {
		return !e.Timestamp.Before(from) && e.Timestamp.Before(to)
	}), nil
}

func (s *InMemoryStore) ListByRule(_ context.Context, rule string) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.Rule == rule }), nil
}

func (s *InMemoryStore) ListHighRisk(_ context.Context, from, to time.Time) ([]Event, error) {
	return s.filter(func(e Event) bool {
		return e.Kind.IsHighRisk() && !e.Timestamp.Before(from) && e.Timestamp.Before(to)
	}), nil
}

func (s *InMemoryStore) filter(keep func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
