package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Components select which API keys are required and which port defaults apply.
const (
	ComponentWeather = "weather-service"
	ComponentFlights = "flight-service"
	ComponentPlanner = "planner"
)

var defaultPorts = map[string]string{
	ComponentWeather: "8000",
	ComponentFlights: "8001",
	ComponentPlanner: "8501",
}

// Config holds service configuration loaded from .env, YAML and env.
type Config struct {
	Component  string
	ServerPort string

	RequestTimeout time.Duration

	OpenWeatherAPIKey  string
	OpenWeatherURL     string
	OpenWeatherTimeout time.Duration

	AmadeusAPIKey    string
	AmadeusAPISecret string
	AmadeusURL       string
	AmadeusTimeout   time.Duration

	OpenAIAPIKey      string
	OpenAIURL         string
	OpenAITimeout     time.Duration
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int

	WeatherServiceURL string
	FlightServiceURL  string
	ServiceTimeout    time.Duration

	CacheTTL     time.Duration
	CacheBackend string // "in_memory", "memcached" or "redis"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration

	CircuitBreakerEnabled          bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	DegradedWindow   time.Duration
	DegradedErrorPct int

	TrackedCities []string
	WarmCache     bool
	WarmInterval  time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	OpenWeather struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"openweather"`

	Amadeus struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"amadeus"`

	OpenAI struct {
		URL         string   `yaml:"url"`
		Timeout     string   `yaml:"timeout"`
		Model       string   `yaml:"model"`
		Temperature *float64 `yaml:"temperature"`
		MaxTokens   int      `yaml:"max_tokens"`
	} `yaml:"openai"`

	Services struct {
		WeatherURL string `yaml:"weather_url"`
		FlightURL  string `yaml:"flight_url"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"services"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr    string `yaml:"addr"`
			DB      int    `yaml:"db"`
			Timeout string `yaml:"timeout"`
		} `yaml:"redis"`
		Warm         bool   `yaml:"warm"`
		WarmInterval string `yaml:"warm_interval"`
	} `yaml:"cache"`

	CircuitBreaker struct {
		Enabled          bool   `yaml:"enabled"`
		FailureThreshold int    `yaml:"failure_threshold"`
		SuccessThreshold int    `yaml:"success_threshold"`
		Timeout          string `yaml:"timeout"`
	} `yaml:"circuit_breaker"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Lifecycle struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`

	Metrics struct {
		TrackedCities []string `yaml:"tracked_cities"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	AmadeusAPIKey     string `yaml:"amadeus_api_key"`
	AmadeusAPISecret  string `yaml:"amadeus_api_secret"`
	OpenAIAPIKey      string `yaml:"openai_api_key"`
	RedisPassword     string `yaml:"redis_password"`
}

// Load reads an optional .env, then config/{ENV_NAME}.yaml (default dev) and the optional
// config/secrets.yaml. Env vars win over secrets. Only the keys component needs are required.
// Call from project root.
func Load(component string) (*Config, error) {
	if _, ok := defaultPorts[component]; !ok {
		return nil, fmt.Errorf("config: unknown component %q", component)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var sec secretsFile
	secretsData, err := os.ReadFile(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else if err := yaml.Unmarshal(secretsData, &sec); err != nil {
		return nil, fmt.Errorf("parse secrets file: %w", err)
	}

	cfg := &Config{Component: component}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, defaultPorts[component])
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 120*time.Second)

	cfg.OpenWeatherAPIKey = firstNonEmpty(os.Getenv("OPENWEATHER_API_KEY"), sec.OpenWeatherAPIKey)
	cfg.OpenWeatherURL = firstNonEmpty(fc.OpenWeather.URL, "https://api.openweathermap.org")
	cfg.OpenWeatherTimeout = parseDurationOrZero(fc.OpenWeather.Timeout, 10*time.Second)

	cfg.AmadeusAPIKey = firstNonEmpty(os.Getenv("AMADEUS_API_KEY"), sec.AmadeusAPIKey)
	cfg.AmadeusAPISecret = firstNonEmpty(os.Getenv("AMADEUS_API_SECRET"), sec.AmadeusAPISecret)
	cfg.AmadeusURL = firstNonEmpty(fc.Amadeus.URL, "https://test.api.amadeus.com")
	cfg.AmadeusTimeout = parseDurationOrZero(fc.Amadeus.Timeout, 10*time.Second)

	cfg.OpenAIAPIKey = firstNonEmpty(os.Getenv("OPENAI_API_KEY"), sec.OpenAIAPIKey)
	cfg.OpenAIURL = firstNonEmpty(fc.OpenAI.URL, "https://api.openai.com")
	cfg.OpenAITimeout = parseDurationOrZero(fc.OpenAI.Timeout, 60*time.Second)
	cfg.OpenAIModel = firstNonEmpty(fc.OpenAI.Model, "gpt-3.5-turbo")
	cfg.OpenAITemperature = 0.7
	if fc.OpenAI.Temperature != nil {
		cfg.OpenAITemperature = *fc.OpenAI.Temperature
	}
	cfg.OpenAIMaxTokens = fc.OpenAI.MaxTokens
	if cfg.OpenAIMaxTokens <= 0 {
		cfg.OpenAIMaxTokens = 1500
	}

	cfg.WeatherServiceURL = firstNonEmpty(os.Getenv("WEATHER_SERVICE_URL"), fc.Services.WeatherURL, "http://localhost:8000")
	cfg.FlightServiceURL = firstNonEmpty(os.Getenv("FLIGHT_SERVICE_URL"), fc.Services.FlightURL, "http://localhost:8001")
	cfg.ServiceTimeout = parseDuration(fc.Services.Timeout, 120*time.Second)

	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 24*time.Hour)
	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(firstNonEmpty(os.Getenv("CACHE_BACKEND"), fc.Cache.Backend, "in_memory")))
	cfg.MemcachedAddrs = strings.TrimSpace(firstNonEmpty(os.Getenv("MEMCACHED_ADDRS"), fc.Cache.Memcached.Addrs, "localhost:11211"))
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}
	cfg.RedisAddr = strings.TrimSpace(firstNonEmpty(os.Getenv("REDIS_ADDR"), fc.Cache.Redis.Addr, "localhost:6379"))
	cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), sec.RedisPassword)
	cfg.RedisDB = fc.Cache.Redis.DB
	cfg.RedisTimeout = parseDuration(fc.Cache.Redis.Timeout, 500*time.Millisecond)
	cfg.WarmCache = fc.Cache.Warm
	cfg.WarmInterval = parseDurationOrZero(fc.Cache.WarmInterval, 0)

	cfg.CircuitBreakerEnabled = fc.CircuitBreaker.Enabled
	cfg.CircuitBreakerFailureThreshold = fc.CircuitBreaker.FailureThreshold
	if cfg.CircuitBreakerFailureThreshold <= 0 {
		cfg.CircuitBreakerFailureThreshold = 5
	}
	cfg.CircuitBreakerSuccessThreshold = fc.CircuitBreaker.SuccessThreshold
	if cfg.CircuitBreakerSuccessThreshold <= 0 {
		cfg.CircuitBreakerSuccessThreshold = 2
	}
	cfg.CircuitBreakerTimeout = parseDuration(fc.CircuitBreaker.Timeout, 30*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = fc.Lifecycle.DegradedErrorPct
	if cfg.DegradedErrorPct <= 0 {
		cfg.DegradedErrorPct = 20
	}
	cfg.TrackedCities = fc.Metrics.TrackedCities

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero or negative durations are returned as-is (validate rejects them where it matters).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate checks the keys the component needs, upstream timeouts and the cache backend.
// RequestTimeout is raised above the component's upstream budget if needed; the planner
// waits on both services and the LLM in sequence. The weather service ignores it: a range
// is bounded by the planner's ServiceTimeout, not by a server deadline.
func validate(cfg *Config) error {
	var upstream, budget time.Duration
	switch cfg.Component {
	case ComponentWeather:
		if cfg.OpenWeatherAPIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY required (set env or config/secrets.yaml openweather_api_key)")
		}
		upstream = cfg.OpenWeatherTimeout
		budget = upstream
	case ComponentFlights:
		if cfg.AmadeusAPIKey == "" || cfg.AmadeusAPISecret == "" {
			return fmt.Errorf("AMADEUS_API_KEY and AMADEUS_API_SECRET required (set env or config/secrets.yaml)")
		}
		upstream = cfg.AmadeusTimeout
		budget = upstream
	case ComponentPlanner:
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY required (set env or config/secrets.yaml openai_api_key)")
		}
		upstream = cfg.OpenAITimeout
		budget = 2*cfg.ServiceTimeout + upstream
	}
	if upstream <= 0 {
		return fmt.Errorf("upstream timeout for %s must be positive", cfg.Component)
	}
	if cfg.RequestTimeout <= budget {
		cfg.RequestTimeout = budget + time.Second
	}
	switch cfg.CacheBackend {
	case "in_memory", "memcached", "redis":
	default:
		return fmt.Errorf("cache.backend must be in_memory, memcached or redis, got %q", cfg.CacheBackend)
	}
	return nil
}
