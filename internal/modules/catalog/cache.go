// README: Redis snapshot cache for the catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey   = "catalog:snapshot"
	generationKey = "catalog:generation"
)

// setIfCurrent writes the snapshot only while the generation is unchanged.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

// Get returns the cached catalog and whether it was present.
func (c *RedisCache) Get(ctx context.Context) (Catalog, bool, error) {
	raw, err := c.redis.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, false, err
	}
	return cat, true, nil
}

// Generation returns the invalidation counter; zero before the first write.
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores cat if no invalidation happened since gen was read. It
// reports whether the snapshot was written.
func (c *RedisCache) Set(ctx context.Context, cat Catalog, gen int64) (bool, error) {
	raw, err := json.Marshal(cat)
	if err != nil {
		return false, err
	}
	n, err := setIfCurrent.Run(ctx, c.redis,
		[]string{generationKey, snapshotKey},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Invalidate bumps the generation and drops the snapshot in one transaction.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, snapshotKey)
		return nil
	})
	return err
}
