package route

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"backend-velohub/internal/analyzer"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "route:metrics:"

// MetricsCache stores analysis results keyed by document content.
type MetricsCache interface {
	Get(ctx context.Context, key string) (analyzer.Metrics, bool, error)
	Set(ctx context.Context, key string, metrics analyzer.Metrics) error
}

type RedisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMetricsCache(client *redis.Client, ttl time.Duration) *RedisMetricsCache {
	return &RedisMetricsCache{client: client, ttl: ttl}
}

func (c *RedisMetricsCache) Get(ctx context.Context, key string) (analyzer.Metrics, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return analyzer.Metrics{}, false, nil
	}
	if err != nil {
		return analyzer.Metrics{}, false, err
	}
	var m analyzer.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return analyzer.Metrics{}, false, err
	}
	return m, true, nil
}

func (c *RedisMetricsCache) Set(ctx context.Context, key string, metrics analyzer.Metrics) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// CacheKey derives the cache key from the raw GPX bytes.
func CacheKey(raw []byte) string {
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
