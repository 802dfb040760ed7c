package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// lookupCacheTTLFloor keeps a zero TTL from caching forever.
const lookupCacheTTLFloor = time.Second

func lookupCacheKey(code string) string {
	return "docverify:lookup:" + code
}

// redisKV is the part of redis.Cmdable the cache uses.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLookupCache keeps lookup results in Redis as JSON.
type RedisLookupCache struct {
	client redisKV
	ttl    time.Duration
}

func NewRedisLookupCache(client redisKV, ttl time.Duration) *RedisLookupCache {
	if ttl < lookupCacheTTLFloor {
		ttl = lookupCacheTTLFloor
	}
	return &RedisLookupCache{client: client, ttl: ttl}
}

func (c *RedisLookupCache) Get(ctx context.Context, code string) (*models.LookupResult, bool, error) {
	b, err := c.client.Get(ctx, lookupCacheKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var res models.LookupResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, false, fmt.Errorf("decode cached lookup: %w", err)
	}
	return &res, true, nil
}

// Set caches positive results only.
func (c *RedisLookupCache) Set(ctx context.Context, code string, result *models.LookupResult) error {
	if result == nil || !result.Verified {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode lookup: %w", err)
	}
	if err := c.client.Set(ctx, lookupCacheKey(code), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisLookupCache) Delete(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, lookupCacheKey(code)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
