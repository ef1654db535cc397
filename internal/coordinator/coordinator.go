package coordinator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

// WeatherSource returns a weather report; failures are reported inside it.
type WeatherSource interface {
	Weather(ctx context.Context, city string, start, end time.Time) models.WeatherReport
}

// FlightSource returns flight offers; failures are reported inside the result.
type FlightSource interface {
	Flights(ctx context.Context, origin, destination string, departure time.Time) models.FlightResult
}

// PlanGenerator produces plan text; failures come back as text with ok false.
type PlanGenerator interface {
	Generate(ctx context.Context, trip models.Trip, summary *models.WeatherSummary, flights models.FlightResult) (string, bool)
}

// Coordinator runs the planning pipeline and holds the most recent result.
type Coordinator struct {
	weather   WeatherSource
	flights   FlightSource
	generator PlanGenerator
	logger    *zap.Logger
	now       func() time.Time

	current atomic.Pointer[models.PlanResult]
}

func New(weather WeatherSource, flights FlightSource, generator PlanGenerator, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		weather:   weather,
		flights:   flights,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Plan validates trip, then calls weather, flights and the generator in order and stores the
// result as current. A validation error returns before any collaborator is called.
func (c *Coordinator) Plan(ctx context.Context, trip models.Trip) (*models.PlanResult, error) {
	trip, err := ValidateTrip(trip)
	if err != nil {
		observability.PlansTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	id := uuid.NewString()
	logger := c.logger.With(zap.String("plan_id", id), zap.String("destination", trip.DestinationCity))
	start := c.now()

	weather := c.weather.Weather(ctx, trip.DestinationCity, trip.StartDate, trip.EndDate)
	if weather.Error != "" {
		logger.Warn("weather unavailable", zap.String("reason", weather.Error))
	}

	flights := c.flights.Flights(ctx, trip.OriginIATA, trip.DestinationIATA, trip.StartDate)
	if flights.Error != "" {
		logger.Warn("flights unavailable", zap.String("reason", flights.Error))
	}

	plan, _ := c.generator.Generate(ctx, trip, weather.Summary, flights)

	result := &models.PlanResult{
		ID:          id,
		Trip:        trip,
		Weather:     weather,
		Flights:     flights,
		Plan:        plan,
		GeneratedAt: c.now().UTC(),
	}
	c.current.Store(result)
	logger.Info("plan ready",
		zap.Int("forecast_days", len(weather.Forecast)),
		zap.Int("flight_offers", len(flights.Flights)),
		zap.Duration("duration", c.now().Sub(start)))
	return result, nil
}

// Current returns the most recent result, or nil.
func (c *Coordinator) Current() *models.PlanResult {
	return c.current.Load()
}

// Reset clears the current result. Collaborators are untouched.
func (c *Coordinator) Reset() {
	c.current.Store(nil)
}
