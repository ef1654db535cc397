package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

// Resolver is implemented by the weather service: a cache-aware city lookup.
// Declared here to avoid a circular dependency on the weather package.
type Resolver interface {
	Resolve(ctx context.Context, city string) (models.Coordinates, error)
}

// GeocodeWarmer pre-resolves a list of cities so the first plan for them skips geocoding.
type GeocodeWarmer struct {
	resolver Resolver
	logger   *zap.Logger
}

func NewGeocodeWarmer(resolver Resolver, logger *zap.Logger) *GeocodeWarmer {
	return &GeocodeWarmer{resolver: resolver, logger: logger}
}

// Warm resolves each city concurrently. Returns the joined errors of failed cities.
func (w *GeocodeWarmer) Warm(ctx context.Context, cities []string) error {
	start := time.Now()
	observability.GeocodeWarmingTotal.Inc()
	if w.logger != nil {
		w.logger.Info("warming geocode cache", zap.Int("cities", len(cities)))
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(cities))
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			if _, err := w.resolver.Resolve(ctx, city); err != nil {
				errCh <- fmt.Errorf("warm %s: %w", city, err)
			}
		}(city)
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if w.logger != nil {
		w.logger.Info("geocode warming complete",
			zap.Int("cities", len(cities)),
			zap.Int("errors", len(errs)),
			zap.Float64("duration_seconds", time.Since(start).Seconds()))
	}
	if len(errs) > 0 {
		observability.GeocodeWarmingErrorsTotal.Inc()
		return fmt.Errorf("geocode warming: %w", errors.Join(errs...))
	}
	return nil
}

// WarmPeriodic runs an initial Warm, then refreshes at interval until ctx is done.
func (w *GeocodeWarmer) WarmPeriodic(ctx context.Context, cities []string, interval time.Duration) error {
	if err := w.Warm(ctx, cities); err != nil && w.logger != nil {
		w.logger.Warn("initial geocode warm failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Warm(ctx, cities); err != nil && w.logger != nil {
				w.logger.Warn("periodic geocode warm failed", zap.Error(err))
			}
		}
	}
}
