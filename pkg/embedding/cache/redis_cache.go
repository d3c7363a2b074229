package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"prime-research/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "prime:embedding:"

// RedisCache shares one embedding cache between processes. Writes go straight
// to Redis without a TTL.
type RedisCache struct {
	client *redis.Client
	logger logger.ILogger
}

func NewRedisCache(client *redis.Client, log logger.ILogger) *RedisCache {
	return &RedisCache{client: client, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(logModule, "Redis cache read failed, treating as miss", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		c.logger.Warn(logModule, "Redis cache entry is corrupt", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return nil, false
	}
	return vector, true
}

func (c *RedisCache) Put(ctx context.Context, key string, vector []float32) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write redis cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Flush(context.Context) error {
	return nil
}
