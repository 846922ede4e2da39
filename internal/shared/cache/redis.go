package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pulsechain-backend/internal/shared/telemetry"
)

// RedisCache implements Coordinator on a shared go-redis client.
// The client is safe for concurrent use and owned by the composition root.
type RedisCache struct {
	Client *redis.Client
}

// NewRedis builds a coordinator over the given address. Connectivity is
// verified with a ping, but a failed ping only logs: the coordinator is
// fail-open and serves misses until the backend comes back.
func NewRedis(ctx context.Context, addr, password string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		telemetry.Error("cache.connect", map[string]any{"addr": addr, "error": err.Error()})
	}
	return &RedisCache{Client: client}
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.Client.Close()
}

// Get returns the cached value for key, treating any backend error as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Error("cache.get", map[string]any{"key": key, "error": err.Error()})
		}
		return "", false
	}
	return val, true
}

// Set stores value under key with the given TTL. Errors are logged, never returned.
func (r *RedisCache) Set(ctx context.Context, key string, ttl time.Duration, value string) {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		telemetry.Error("cache.set", map[string]any{"key": key, "error": err.Error()})
	}
}

// Delete removes key. Errors are logged, never returned.
func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		telemetry.Error("cache.del", map[string]any{"key": key, "error": err.Error()})
	}
}

var _ Coordinator = (*RedisCache)(nil)
