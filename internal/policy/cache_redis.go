package policy

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	domain "github.com/FedassaMeg/haven-sub012/pkg/domain"
)

const redisKeyPrefix = "policy:decisions:"

// RedisCache is the shared DecisionCache for multi-instance deployments.
// One hash per actor, one field per (version, field, export) decision, so
// actor-level invalidation is a single DEL. No expirations are set:
// eviction is always explicit.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func actorKey(actor domain.ActorID) string {
	return redisKeyPrefix + actor.String()
}

func (c *RedisCache) Get(ctx context.Context, actor domain.ActorID, version, field string, export ExportType) (RedactionLevel, bool, error) {
	raw, err := c.client.HGet(ctx, actorKey(actor), version+"#"+decisionField(field, export)).Result()
	if err == redis.Nil {
		return NoRedaction, false, nil
	}
	if err != nil {
		return NoRedaction, false, fmt.Errorf("redis hget: %w", err)
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		return NoRedaction, false, fmt.Errorf("corrupt cache entry %q: %w", raw, err)
	}
	return RedactionLevel(level), true, nil
}

func (c *RedisCache) Put(ctx context.Context, actor domain.ActorID, version, field string, export ExportType, level RedactionLevel) error {
	if err := c.client.HSet(ctx, actorKey(actor), version+"#"+decisionField(field, export), int(level)).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateActor(ctx context.Context, actor domain.ActorID) error {
	if err := c.client.Del(ctx, actorKey(actor)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
