package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/models"
)

type mockSearcher struct {
	offers []models.FlightOffer
	err    error
	calls  int
}

func (m *mockSearcher) SearchFlights(ctx context.Context, origin, destination string, departure time.Time) ([]models.FlightOffer, error) {
	m.calls++
	return m.offers, m.err
}

var departure = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestService_Lookup_Success(t *testing.T) {
	offers := []models.FlightOffer{
		{Price: models.Price{Total: "412.50", Currency: "EUR"}},
		{Price: models.Price{Total: "380.00", Currency: "EUR"}},
	}
	svc := NewService(&mockSearcher{offers: offers}, nil)

	result, ok := svc.Lookup(context.Background(), "LIS", "JFK", departure)
	if !ok {
		t.Fatal("Lookup() ok = false")
	}
	if result.Status != models.FlightStatusSuccess || result.Error != "" {
		t.Errorf("result = %+v", result)
	}
	if len(result.Flights) != 2 || result.Flights[0].Price.Total != "412.50" {
		t.Errorf("Flights = %+v, want upstream order", result.Flights)
	}
}

func TestService_Lookup_EmptyIsSuccess(t *testing.T) {
	svc := NewService(&mockSearcher{}, nil)

	result, ok := svc.Lookup(context.Background(), "LIS", "JFK", departure)
	if !ok || result.Flights == nil || len(result.Flights) != 0 {
		t.Errorf("Lookup() = %+v, %v, want success with empty non-nil flights", result, ok)
	}
}

func TestService_Lookup_UpstreamError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := context.WithValue(context.Background(), "logger", zap.New(core))
	svc := NewService(&mockSearcher{err: client.ErrUpstreamFailure}, nil)

	result, ok := svc.Lookup(ctx, "LIS", "JFK", departure)
	if ok {
		t.Fatal("Lookup() ok = true, want false")
	}
	if result.Status != models.FlightStatusError || result.Error == "" {
		t.Errorf("result = %+v", result)
	}
	if result.Flights == nil || len(result.Flights) != 0 {
		t.Errorf("Flights = %v, want empty non-nil", result.Flights)
	}
	if logs.FilterMessage("flight search failed").Len() != 1 {
		t.Errorf("expected one error log, got %v", logs.All())
	}
}

func TestService_Lookup_NoPanicOnNilLogger(t *testing.T) {
	svc := NewService(&mockSearcher{err: errors.New("boom")}, nil)
	if _, ok := svc.Lookup(context.Background(), "LIS", "JFK", departure); ok {
		t.Error("Lookup() ok = true, want false")
	}
}
