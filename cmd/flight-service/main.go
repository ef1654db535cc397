package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/config"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	"github.com/kjstillabower/travel-planner-service/internal/flights"
	httphandler "github.com/kjstillabower/travel-planner-service/internal/http"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

func main() {
	logger, err := observability.NewLogger(config.ComponentFlights)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(config.ComponentFlights)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	amadeus, err := client.NewAmadeusClient(cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, cfg.AmadeusURL, cfg.AmadeusTimeout)
	if err != nil {
		logger.Fatal("amadeus client", zap.Error(err))
	}

	var breaker *circuitbreaker.CircuitBreaker
	if cfg.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
			Component:        client.ProviderAmadeus,
			OnStateChange: func(component string, from, to circuitbreaker.State) {
				observability.RecordCircuitBreakerTransition(component, from.String(), to.String(), int(to))
				logger.Warn("circuit breaker transition",
					zap.String("component", component), zap.String("from", from.String()), zap.String("to", to.String()))
			},
		})
		observability.CircuitBreakerState.WithLabelValues(client.ProviderAmadeus).Set(0)
		logger.Info("circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold), zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}

	handler := httphandler.NewFlightHandler(flights.NewService(amadeus, breaker), logger)
	health := httphandler.NewHealthHandler(httphandler.HealthConfig{
		Service:  config.ComponentFlights,
		Degraded: degraded.Policy{Window: cfg.DegradedWindow, ErrorPct: cfg.DegradedErrorPct},
	}, logger)

	router := httphandler.NewRouter(logger, health)
	router.Handle("/flights", httphandler.TimeoutMiddleware(cfg.RequestTimeout)(http.HandlerFunc(handler.PostFlights))).
		Methods(http.MethodPost)

	httphandler.Run(httphandler.NewServer(cfg.ServerPort, httphandler.CORSMiddleware(router), cfg.RequestTimeout), logger, httphandler.ShutdownConfig{
		Timeout:               cfg.ShutdownTimeout,
		InFlightTimeout:       cfg.ShutdownInFlightTimeout,
		InFlightCheckInterval: cfg.ShutdownInFlightCheckInterval,
	})
}
