package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/config"
	"github.com/kjstillabower/travel-planner-service/internal/coordinator"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	httphandler "github.com/kjstillabower/travel-planner-service/internal/http"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
	"github.com/kjstillabower/travel-planner-service/internal/planner"
)

func main() {
	logger, err := observability.NewLogger(config.ComponentPlanner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(config.ComponentPlanner)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	llm, err := client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.OpenAITimeout, client.ChatOptions{
		Model:        cfg.OpenAIModel,
		SystemPrompt: planner.DefaultSystemPrompt,
		Temperature:  cfg.OpenAITemperature,
		MaxTokens:    cfg.OpenAIMaxTokens,
	})
	if err != nil {
		logger.Fatal("openai client", zap.Error(err))
	}

	coord := coordinator.New(
		client.NewWeatherServiceClient(cfg.WeatherServiceURL, cfg.ServiceTimeout),
		client.NewFlightServiceClient(cfg.FlightServiceURL, cfg.ServiceTimeout),
		planner.NewGenerator(llm, logger),
		logger,
	)
	logger.Info("planner wired",
		zap.String("weather_service", cfg.WeatherServiceURL),
		zap.String("flight_service", cfg.FlightServiceURL),
		zap.String("model", cfg.OpenAIModel))

	ui := httphandler.NewUIHandler(coord, logger)
	health := httphandler.NewHealthHandler(httphandler.HealthConfig{
		Service:  config.ComponentPlanner,
		Degraded: degraded.Policy{Window: cfg.DegradedWindow, ErrorPct: cfg.DegradedErrorPct},
	}, logger)

	router := httphandler.NewRouter(logger, health)
	router.HandleFunc("/", ui.Index).Methods(http.MethodGet)
	router.Handle("/plan", httphandler.TimeoutMiddleware(cfg.RequestTimeout)(http.HandlerFunc(ui.PostPlan))).
		Methods(http.MethodPost)
	router.HandleFunc("/reset", ui.PostReset).Methods(http.MethodPost)
	router.HandleFunc("/plan.pdf", ui.GetPDF).Methods(http.MethodGet)

	httphandler.Run(httphandler.NewServer(cfg.ServerPort, router, cfg.RequestTimeout), logger, httphandler.ShutdownConfig{
		Timeout:               cfg.ShutdownTimeout,
		InFlightTimeout:       cfg.ShutdownInFlightTimeout,
		InFlightCheckInterval: cfg.ShutdownInFlightCheckInterval,
	})
}
