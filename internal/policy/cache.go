package policy

import (
	"context"
	"log/slog"
	"sync"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

// DecisionCache stores resolved redaction levels keyed by
// (actor, policy version). Entries are evicted explicitly when roles,
// consents, or the policy change. A stale entry is a correctness bug, so
// there is no TTL-based fallback path.
type DecisionCache interface {
	Get(ctx context.Context, actor domain.ActorID, version, field string, export ExportType) (RedactionLevel, bool, error)
	Put(ctx context.Context, actor domain.ActorID, version, field string, export ExportType, level RedactionLevel) error
	// InvalidateActor drops every cached decision for one actor, across
	// policy versions. Called on role change and consent revocation.
	InvalidateActor(ctx context.Context, actor domain.ActorID) error
	// InvalidateAll drops the whole cache. Called on policy update.
	InvalidateAll(ctx context.Context) error
}

func decisionField(field string, export ExportType) string {
	return field + "|" + string(export)
}

// InMemoryCache is the process-local DecisionCache.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[domain.ActorID]map[string]RedactionLevel
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[domain.ActorID]map[string]RedactionLevel)}
}

func (c *InMemoryCache) Get(_ context.Context, actor domain.ActorID, version, field string, export ExportType) (RedactionLevel, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byActor, ok := c.entries[actor]
	if !ok {
		return NoRedaction, false, nil
	}
	level, ok := byActor[version+"#"+decisionField(field, export)]
	return level, ok, nil
}

func (c *InMemoryCache) Put(_ context.Context, actor domain.ActorID, version, field string, export ExportType, level RedactionLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	byActor, ok := c.entries[actor]
	if !ok {
		byActor = make(map[string]RedactionLevel)
		c.entries[actor] = byActor
	}
	byActor[version+"#"+decisionField(field, export)] = level
	return nil
}

func (c *InMemoryCache) InvalidateActor(_ context.Context, actor domain.ActorID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, actor)
	return nil
}

func (c *InMemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[domain.ActorID]map[string]RedactionLevel)
	return nil
}

// CachedResolver decorates a Resolver with a DecisionCache. Cache failures
// fall back to direct evaluation: availability of the cache never changes
// the decision, only its cost.
type CachedResolver struct {
	resolver *Resolver
	cache    DecisionCache
	logger   *slog.Logger
}

func NewCachedResolver(resolver *Resolver, cache DecisionCache, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{resolver: resolver, cache: cache, logger: logger}
}

func (c *CachedResolver) Resolve(ctx context.Context, fieldLabel string, access AccessContext, export ExportType) (RedactionLevel, error) {
	if level, ok, err := c.cache.Get(ctx, access.ActorID, c.resolver.Version, fieldLabel, export); err == nil && ok {
		return level, nil
	}
	level := c.resolver.Resolve(fieldLabel, access, export)
	if err := c.cache.Put(ctx, access.ActorID, c.resolver.Version, fieldLabel, export, level); err != nil {
		// The computed decision is still authoritative; a write-through
		// failure only costs the next lookup.
		c.logger.WarnContext(ctx, "decision cache write failed",
			"field", fieldLabel, "actor", access.ActorID, "error", err)
	}
	return level, nil
}

// Version exposes the wrapped resolver's policy version for cache keying
// by callers that store decisions themselves.
func (c *CachedResolver) PolicyVersion() string { return c.resolver.Version }
