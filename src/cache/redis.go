package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"deviation-dashboard/src/logger"
	"deviation-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// RedisCache backs the series cache with Redis so multiple dashboard
// processes can share fetched history. TTL expiry is native; eviction is left
// to Redis' own policy. Values are JSON-encoded bar slices.
// -----------------------------------------------------------------------------

const redisKeyPrefix = "deviation:series:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisCache(addr string, db int, ttl time.Duration, log *logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// -----------------------------------------------------------------------------

// Ping verifies the connection at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Get(key string) ([]models.MPriceBar, bool) {
	ctx := context.Background()

	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warning("Redis get failed for %s: %v", key, err)
		return nil, false
	}

	var bars []models.MPriceBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		c.client.Del(ctx, redisKeyPrefix+key)
		c.logger.Warning("Dropped corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	return bars, true
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Set(key string, bars []models.MPriceBar) {
	ctx := context.Background()

	raw, err := json.Marshal(bars)
	if err != nil {
		c.logger.Error("Failed to encode bars for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		// Cache writes are best-effort; the next request refetches.
		c.logger.Warning("Redis set failed for %s: %v", key, err)
	}
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Delete(key string) {
	c.client.Del(context.Background(), redisKeyPrefix+key)
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Len() int {
	keys, err := c.client.Keys(context.Background(), redisKeyPrefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Close() error {
	return c.client.Close()
}
