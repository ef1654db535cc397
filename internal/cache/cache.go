package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// Cache stores geocoding results keyed by normalized city name.
// Get returns cached coordinates if present and not expired, Set stores them with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.Coordinates, bool, error)
	Set(ctx context.Context, key string, value models.Coordinates, ttl time.Duration) error
}

// Remote is a cache backed by an external store. Ping feeds the health check.
type Remote interface {
	Cache
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by New.
const (
	BackendInMemory  = "in_memory"
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration
}

// New builds the configured backend. remote is nil for in_memory.
func New(opts Options) (c Cache, remote Remote, err error) {
	switch opts.Backend {
	case "", BackendInMemory:
		return NewInMemoryCache(), nil, nil
	case BackendMemcached:
		mc, err := NewMemcachedCache(opts.MemcachedAddrs, opts.MemcachedTimeout, opts.MemcachedMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		return mc, mc, nil
	case BackendRedis:
		rc, err := NewRedisCache(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisTimeout)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// InMemoryCache implements Cache using a map with TTL-based expiration.
// Expired entries are removed on access. Safe for concurrent use.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]cacheEntry
}

type cacheEntry struct {
	value     models.Coordinates
	expiresAt time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get returns (coords, true, nil) on hit, (zero, false, nil) on miss or expiration.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.Coordinates, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return models.Coordinates{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.Coordinates{}, false, nil
	}

	return entry.value, true, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value models.Coordinates, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
