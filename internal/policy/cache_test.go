package policy

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

type CacheSuite struct {
	suite.Suite
	cache *InMemoryCache
	ctx   context.Context
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.cache = NewInMemoryCache()
	s.ctx = context.Background()
}

func (s *CacheSuite) TestPutGet() {
	actor := domain.NewActorID()

	_, ok, err := s.cache.Get(s.ctx, actor, "v1", "clientSSN", ExportNone)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Put(s.ctx, actor, "v1", "clientSSN", ExportNone, HashOnly))

	level, ok, err := s.cache.Get(s.ctx, actor, "v1", "clientSSN", ExportNone)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(HashOnly, level)
}

func (s *CacheSuite) TestVersionAndExportKeying() {
	actor := domain.NewActorID()
	s.Require().NoError(s.cache.Put(s.ctx, actor, "v1", "clientSSN", ExportNone, Partial))

	s.Run("different policy version misses", func() {
		_, ok, err := s.cache.Get(s.ctx, actor, "v2", "clientSSN", ExportNone)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("different export type misses", func() {
		_, ok, err := s.cache.Get(s.ctx, actor, "v1", "clientSSN", ExportHMIS)
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *CacheSuite) TestInvalidation() {
	actorA := domain.NewActorID()
	actorB := domain.NewActorID()
	s.Require().NoError(s.cache.Put(s.ctx, actorA, "v1", "f", ExportNone, Partial))
	s.Require().NoError(s.cache.Put(s.ctx, actorB, "v1", "f", ExportNone, Partial))

	s.Run("actor invalidation is scoped", func() {
		s.Require().NoError(s.cache.InvalidateActor(s.ctx, actorA))
		_, ok, _ := s.cache.Get(s.ctx, actorA, "v1", "f", ExportNone)
		s.False(ok)
		_, ok, _ = s.cache.Get(s.ctx, actorB, "v1", "f", ExportNone)
		s.True(ok)
	})

	s.Run("policy update drops everything", func() {
		s.Require().NoError(s.cache.InvalidateAll(s.ctx))
		_, ok, _ := s.cache.Get(s.ctx, actorB, "v1", "f", ExportNone)
		s.False(ok)
	})
}

func (s *CacheSuite) TestCachedResolverConsistency() {
	resolver := NewResolver("v1")
	cached := NewCachedResolver(resolver, s.cache, slog.Default())
	ctx := ctxWith([]Role{RoleExternalPartner}, nil)

	first, err := cached.Resolve(s.ctx, "clientSSN", ctx, ExportNone)
	s.Require().NoError(err)
	second, err := cached.Resolve(s.ctx, "clientSSN", ctx, ExportNone)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(HashOnly, first)
}

// unwritableCache accepts reads but rejects every write, standing in for a
// cache backend that is down.
type unwritableCache struct {
	*InMemoryCache
}

func (c *unwritableCache) Put(context.Context, domain.ActorID, string, string, ExportType, RedactionLevel) error {
	return errors.New("connection refused")
}

func (s *CacheSuite) TestResolveSurvivesCacheWriteFailure() {
	cached := NewCachedResolver(NewResolver("v1"), &unwritableCache{NewInMemoryCache()}, slog.Default())
	ctx := ctxWith([]Role{RoleExternalPartner}, nil)

	level, err := cached.Resolve(s.ctx, "clientSSN", ctx, ExportNone)
	s.Require().NoError(err)
	s.Equal(HashOnly, level)

	s.Run("repeat resolution still succeeds without a cache", func() {
		level, err := cached.Resolve(s.ctx, "clientSSN", ctx, ExportNone)
		s.Require().NoError(err)
		s.Equal(HashOnly, level)
	})
}

func (s *CacheSuite) TestInvalidatorEvents() {
	actor := domain.NewActorID()
	s.Require().NoError(s.cache.Put(s.ctx, actor, "v1", "f", ExportNone, Partial))

	inbox := make(chan ChangeEvent, 1)
	inv := NewInvalidator(s.cache, inbox, slog.Default())

	runCtx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = inv.Run(runCtx)
	}()

	inbox <- ChangeEvent{Kind: ChangeConsentRevocation, Actor: actor}

	s.Eventually(func() bool {
		_, ok, _ := s.cache.Get(s.ctx, actor, "v1", "f", ExportNone)
		return !ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
