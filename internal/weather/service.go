package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/cache"
	"github.com/kjstillabower/travel-planner-service/internal/calendar"
	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
	"github.com/kjstillabower/travel-planner-service/internal/summary"
)

const (
	NoteLastYear = "This data represents the weather conditions from the same period last year"
	MsgNoData    = "No historical weather data available for the specified period"
)

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (models.Coordinates, error)
}

// History returns the recorded weather for one day at a location.
type History interface {
	Observation(ctx context.Context, coords models.Coordinates, day time.Time) (models.DailyObservation, error)
}

// Service builds last-year weather reports: geocode (cache-aside), shift the range back a year,
// fetch one observation per day and summarize.
type Service struct {
	geocoder  Geocoder
	history   History
	cache     cache.Cache
	ttl       time.Duration
	breaker   *circuitbreaker.CircuitBreaker
	coalescer *lookupCoalescer
	now       func() time.Time
}

// NewService wires the collaborators. breaker may be nil (disabled).
func NewService(geocoder Geocoder, history History, c cache.Cache, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker) *Service {
	return &Service{
		geocoder:  geocoder,
		history:   history,
		cache:     c,
		ttl:       ttl,
		breaker:   breaker,
		coalescer: newLookupCoalescer(30 * time.Second),
		now:       time.Now,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// Resolve returns coordinates for city, consulting the geocode cache first.
// Cache errors are logged and counted but never fail the lookup.
func (s *Service) Resolve(ctx context.Context, city string) (models.Coordinates, error) {
	key := observability.NormalizeCity(city)
	logger := loggerFromContext(ctx)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		logger.Warn("cache get failed", zap.String("city", key), zap.Error(err))
	} else if ok {
		observability.CacheHitsTotal.WithLabelValues("geocode").Inc()
		logger.Debug("cache hit", zap.String("city", key))
		return cached, nil
	}

	coords, err := s.coalescer.Do(ctx, key, func() (models.Coordinates, error) {
		// Detached from the caller so one cancelled request does not fail the others waiting on it.
		return s.geocoder.Geocode(context.WithoutCancel(ctx), strings.TrimSpace(city))
	})
	if err != nil {
		return models.Coordinates{}, err
	}

	if setErr := s.cache.Set(ctx, key, coords, s.ttl); setErr != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		logger.Warn("cache set failed", zap.String("city", key), zap.Error(setErr))
	}
	return coords, nil
}

// Report builds the weather report for city over [start, end] using the same dates one year earlier.
// Geocoding failures return a report with Error set plus the error (ErrLocationNotFound or an upstream
// error). An empty sample is not an error: the report carries MsgNoData and a nil summary.
// A canceled ctx mid-range fails the whole report; a partial range is never summarized as complete.
func (s *Service) Report(ctx context.Context, city string, start, end time.Time) (models.WeatherReport, error) {
	logger := loggerFromContext(ctx).With(zap.String("city", city))
	report := models.WeatherReport{
		City:     city,
		Forecast: []models.DailyObservation{},
	}

	days, err := calendar.Days(calendar.PreviousYear(start), calendar.PreviousYear(end))
	if err != nil {
		return s.fail(report, "error", fmt.Errorf("date range: %w", err))
	}

	coords, err := s.Resolve(ctx, city)
	if err != nil {
		outcome := "error"
		if errors.Is(err, client.ErrLocationNotFound) {
			outcome = "not_found"
		}
		logger.Warn("geocoding failed", zap.Error(err))
		return s.fail(report, outcome, err)
	}
	logger.Info("resolved city", zap.Float64("lat", coords.Lat), zap.Float64("lon", coords.Lon))

	for _, day := range days {
		var obs models.DailyObservation
		err := s.breaker.Call(ctx, func(ctx context.Context) error {
			var err error
			obs, err = s.history.Observation(ctx, coords, day)
			return err
		})
		if err != nil {
			observability.WeatherDaysTotal.WithLabelValues("skipped").Inc()
			logger.Debug("day skipped", zap.String("date", day.Format(models.DateLayout)), zap.Error(err))
			if ctx.Err() != nil {
				logger.Warn("weather report abandoned", zap.Int("days_requested", len(days)),
					zap.Int("days_fetched", len(report.Forecast)), zap.Error(ctx.Err()))
				report.Forecast = []models.DailyObservation{}
				return s.fail(report, "canceled", fmt.Errorf("weather history for %s: %w", city, ctx.Err()))
			}
			continue
		}
		observability.WeatherDaysTotal.WithLabelValues("fetched").Inc()
		report.Forecast = append(report.Forecast, obs)
	}

	report.Timestamp = s.now().UTC()
	observability.RecordWeatherQuery(city)

	if len(report.Forecast) == 0 {
		observability.WeatherReportsTotal.WithLabelValues("no_data").Inc()
		logger.Warn("no historical weather data", zap.Int("days_requested", len(days)))
		report.Error = MsgNoData
		return report, nil
	}

	report.Summary = summary.Summarize(report.Forecast)
	report.Note = NoteLastYear
	observability.WeatherReportsTotal.WithLabelValues("ok").Inc()
	logger.Info("weather report built", zap.Int("days_requested", len(days)), zap.Int("days_fetched", len(report.Forecast)))
	return report, nil
}

func (s *Service) fail(report models.WeatherReport, outcome string, err error) (models.WeatherReport, error) {
	observability.WeatherReportsTotal.WithLabelValues(outcome).Inc()
	report.Timestamp = s.now().UTC()
	report.Error = err.Error()
	return report, err
}
