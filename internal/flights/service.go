package flights

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

// Searcher finds flight offers for a one-way, one-adult trip.
type Searcher interface {
	SearchFlights(ctx context.Context, origin, destination string, departure time.Time) ([]models.FlightOffer, error)
}

// Service wraps a Searcher and reports failures inside the result instead of returning them.
type Service struct {
	searcher Searcher
	breaker  *circuitbreaker.CircuitBreaker
}

// NewService wires the searcher. breaker may be nil (disabled).
func NewService(searcher Searcher, breaker *circuitbreaker.CircuitBreaker) *Service {
	return &Service{searcher: searcher, breaker: breaker}
}

func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// Lookup returns the offers in upstream order. On failure the result has status "error",
// an empty flight list and the error text; ok is false so callers can pick a status code.
func (s *Service) Lookup(ctx context.Context, origin, destination string, departure time.Time) (result models.FlightResult, ok bool) {
	logger := loggerFromContext(ctx).With(
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.String("departure", departure.Format(models.DateLayout)),
	)

	var offers []models.FlightOffer
	err := s.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		offers, err = s.searcher.SearchFlights(ctx, origin, destination, departure)
		return err
	})
	if err != nil {
		observability.FlightLookupsTotal.WithLabelValues(models.FlightStatusError).Inc()
		logger.Error("flight search failed", zap.Error(err))
		return models.FlightResult{
			Status:  models.FlightStatusError,
			Flights: []models.FlightOffer{},
			Error:   err.Error(),
		}, false
	}

	if offers == nil {
		offers = []models.FlightOffer{}
	}
	observability.FlightLookupsTotal.WithLabelValues(models.FlightStatusSuccess).Inc()
	logger.Info("flight search complete", zap.Int("offers", len(offers)))
	return models.FlightResult{Status: models.FlightStatusSuccess, Flights: offers}, true
}
