package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// RedisCache implements Cache using redis string keys with TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache for addr (host:port). timeout applies to dial, read and write;
// zero keeps the go-redis defaults.
func NewRedisCache(addr, password string, db int, timeout time.Duration) (*RedisCache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) key(k string) string {
	return keyPrefix + k
}

// Get returns false, nil on cache miss; false, err on error.
func (c *RedisCache) Get(ctx context.Context, key string) (models.Coordinates, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Coordinates{}, false, nil
		}
		return models.Coordinates{}, false, err
	}
	var coords models.Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return models.Coordinates{}, false, err
	}
	return coords, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value models.Coordinates, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), raw, ttl).Err()
}

// Ping checks if redis is reachable. Used for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
