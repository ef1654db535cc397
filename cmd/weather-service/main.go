package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/cache"
	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/config"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	httphandler "github.com/kjstillabower/travel-planner-service/internal/http"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
	"github.com/kjstillabower/travel-planner-service/internal/weather"
)

func main() {
	logger, err := observability.NewLogger(config.ComponentWeather)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(config.ComponentWeather)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	owClient, err := client.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, cfg.OpenWeatherTimeout)
	if err != nil {
		logger.Fatal("openweather client", zap.Error(err))
	}
	if err := owClient.ValidateAPIKey(context.Background()); err != nil {
		logger.Warn("openweather key check failed; serving anyway", zap.String("error_category", string(client.CategorizeError(err))), zap.Error(err))
	} else {
		logger.Info("openweather key accepted")
	}

	var breaker *circuitbreaker.CircuitBreaker
	if cfg.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
			Component:        client.ProviderHistory,
			OnStateChange: func(component string, from, to circuitbreaker.State) {
				observability.RecordCircuitBreakerTransition(component, from.String(), to.String(), int(to))
				logger.Warn("circuit breaker transition",
					zap.String("component", component), zap.String("from", from.String()), zap.String("to", to.String()))
			},
			// Neither a day with no data nor a caller hanging up says anything about provider health.
			IsFailure: func(err error) bool {
				return !errors.Is(err, client.ErrNoData) && !errors.Is(err, context.Canceled)
			},
		})
		observability.CircuitBreakerState.WithLabelValues(client.ProviderHistory).Set(0)
		logger.Info("circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold), zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}

	geoCache, remote, err := cache.New(cache.Options{
		Backend:               cfg.CacheBackend,
		MemcachedAddrs:        cfg.MemcachedAddrs,
		MemcachedTimeout:      cfg.MemcachedTimeout,
		MemcachedMaxIdleConns: cfg.MemcachedMaxIdleConns,
		RedisAddr:             cfg.RedisAddr,
		RedisPassword:         cfg.RedisPassword,
		RedisDB:               cfg.RedisDB,
		RedisTimeout:          cfg.RedisTimeout,
	})
	if err != nil {
		logger.Fatal("geocode cache", zap.Error(err))
	}
	logger.Info("cache backend", zap.String("backend", cfg.CacheBackend))

	weatherService := weather.NewService(owClient, owClient, geoCache, cfg.CacheTTL, breaker)

	if len(cfg.TrackedCities) > 0 {
		observability.SetTrackedCities(cfg.TrackedCities)
	}
	warmCtx, stopWarming := context.WithCancel(context.Background())
	defer stopWarming()
	if cfg.WarmCache && len(cfg.TrackedCities) > 0 {
		warmer := cache.NewGeocodeWarmer(weatherService, logger)
		initCtx, initCancel := context.WithTimeout(warmCtx, 30*time.Second)
		if err := warmer.Warm(initCtx, cfg.TrackedCities); err != nil {
			logger.Warn("geocode warming failed", zap.Error(err))
		}
		initCancel()
		if cfg.WarmInterval > 0 {
			go func() {
				if err := warmer.WarmPeriodic(warmCtx, cfg.TrackedCities, cfg.WarmInterval); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("periodic geocode warming stopped", zap.Error(err))
				}
			}()
		}
	}

	healthCfg := httphandler.HealthConfig{
		Service:  config.ComponentWeather,
		Degraded: degraded.Policy{Window: cfg.DegradedWindow, ErrorPct: cfg.DegradedErrorPct},
	}
	if remote != nil {
		healthCfg.Cache = remote
	}
	handler := httphandler.NewWeatherHandler(weatherService, logger)

	router := httphandler.NewRouter(logger, httphandler.NewHealthHandler(healthCfg, logger))
	router.HandleFunc("/", handler.Root).Methods(http.MethodGet)
	// One upstream call per day: no request deadline, the caller's disconnect cancels the range.
	router.HandleFunc("/weather", handler.PostWeather).Methods(http.MethodPost)

	closers := []func() error{func() error { stopWarming(); return nil }}
	if remote != nil {
		closers = append(closers, remote.Close)
	}
	httphandler.Run(httphandler.NewServer(cfg.ServerPort, httphandler.CORSMiddleware(router), 0), logger, httphandler.ShutdownConfig{
		Timeout:               cfg.ShutdownTimeout,
		InFlightTimeout:       cfg.ShutdownInFlightTimeout,
		InFlightCheckInterval: cfg.ShutdownInFlightCheckInterval,
	}, closers...)
}
