//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/cache"
	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/flights"
	"github.com/kjstillabower/travel-planner-service/internal/weather"
)

// IntegrationTestConfig holds upstream credentials and cache choice for integration tests.
type IntegrationTestConfig struct {
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	AmadeusAPIKey     string
	AmadeusAPISecret  string
	AmadeusURL        string
	CacheBackend      string // "in_memory", "memcached" or "redis"
	MemcachedAddr     string
	RedisAddr         string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetIntegrationConfig loads integration settings from the environment.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	return IntegrationTestConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:    envOr("OPENWEATHER_API_URL", "https://api.openweathermap.org"),
		AmadeusAPIKey:     os.Getenv("AMADEUS_API_KEY"),
		AmadeusAPISecret:  os.Getenv("AMADEUS_API_SECRET"),
		AmadeusURL:        envOr("AMADEUS_API_URL", "https://test.api.amadeus.com"),
		CacheBackend:      os.Getenv("INTEGRATION_CACHE_BACKEND"),
		MemcachedAddr:     envOr("MEMCACHED_ADDRS", "localhost:11211"),
		RedisAddr:         envOr("REDIS_ADDR", "localhost:6379"),
	}
}

// SetupWeatherService builds the weather service against the real provider.
// Skips when OPENWEATHER_API_KEY is not set. Falls back to the in-memory cache when the
// requested backend cannot be built.
func SetupWeatherService(t *testing.T, cfg IntegrationTestConfig) (*weather.Service, func()) {
	if cfg.OpenWeatherAPIKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}
	ow, err := client.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	c, remote, err := cache.New(cache.Options{
		Backend:               cfg.CacheBackend,
		MemcachedAddrs:        cfg.MemcachedAddr,
		MemcachedTimeout:      500 * time.Millisecond,
		MemcachedMaxIdleConns: 2,
		RedisAddr:             cfg.RedisAddr,
		RedisTimeout:          500 * time.Millisecond,
	})
	cleanup := func() {}
	if err != nil {
		t.Logf("cache backend %q not available (%v), using in-memory cache", cfg.CacheBackend, err)
		c = cache.NewInMemoryCache()
	} else if remote != nil {
		cleanup = func() { _ = remote.Close() }
	}
	return weather.NewService(ow, ow, c, 5*time.Minute, nil), cleanup
}

// SetupFlightService builds the flight service against the Amadeus test environment.
// Skips when AMADEUS_API_KEY or AMADEUS_API_SECRET is not set.
func SetupFlightService(t *testing.T, cfg IntegrationTestConfig) *flights.Service {
	if cfg.AmadeusAPIKey == "" || cfg.AmadeusAPISecret == "" {
		t.Skip("AMADEUS_API_KEY/AMADEUS_API_SECRET not set, skipping integration test")
	}
	am, err := client.NewAmadeusClient(cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, cfg.AmadeusURL, 10*time.Second)
	if err != nil {
		t.Fatalf("NewAmadeusClient() error = %v", err)
	}
	return flights.NewService(am, nil)
}
