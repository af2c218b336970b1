package clearance

import (
	"context"
	"sync"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
	"github.com/FedassaMeg/haven-sub012/pkg/platform/sentinel"
)

type InMemoryClearanceStore struct {
	mu         sync.RWMutex
	clearances map[domain.ClearanceID]SecurityClearance
}

func NewInMemoryClearanceStore() *InMemoryClearanceStore {
	return &InMemoryClearanceStore{clearances: make(map[domain.ClearanceID]SecurityClearance)}
}

func (s *InMemoryClearanceStore) Save(_ context.Context, clearance SecurityClearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearances[clearance.ID] = clearance
	return nil
}

func (s *InMemoryClearanceStore) FindByID(_ context.Context, id domain.ClearanceID) (SecurityClearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clearance, ok := s.clearances[id]
	if !ok {
		return SecurityClearance{}, sentinel.ErrNotFound
	}
	return clearance, nil
}

func (s *InMemoryClearanceStore) FindLatestForUser(_ context.Context, user domain.ActorID) (SecurityClearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest SecurityClearance
	found := false
	for _, clearance := range s.clearances {
		if clearance.UserID != user {
			continue
		}
		if !found || clearance.GrantedAt.After(latest.GrantedAt) {
			latest = clearance
			found = true
		}
	}
	if !found {
		return SecurityClearance{}, sentinel.ErrNotFound
	}
	return latest, nil
}

type InMemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[domain.TenantID]TenantExportConfiguration
}

func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{configs: make(map[domain.TenantID]TenantExportConfiguration)}
}

func (s *InMemoryConfigStore) Save(_ context.Context, config TenantExportConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[config.TenantID] = config
	return nil
}

func (s *InMemoryConfigStore) FindByTenant(_ context.Context, tenant domain.TenantID) (TenantExportConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	config, ok := s.configs[tenant]
	if !ok {
		return TenantExportConfiguration{}, sentinel.ErrNotFound
	}
	return config, nil
}
