package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

func samplePlan() *models.PlanResult {
	return &models.PlanResult{
		ID: "7f1c2c1e-0000-4000-8000-000000000000",
		Trip: models.Trip{
			OriginCity: "Lisbon", OriginIATA: "LIS",
			DestinationCity: "Zürich", DestinationIATA: "ZRH",
			StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		Weather: models.WeatherReport{
			City: "Zürich",
			Forecast: []models.DailyObservation{
				{Date: "2024-06-01", Temperature: 18, Conditions: "clear sky", Humidity: 60, WindSpeed: 3},
			},
			Summary: &models.WeatherSummary{
				Temperature:          models.Stat{Average: "18.0°C", Min: "18.0°C", Max: "18.0°C"},
				MostCommonConditions: []models.ConditionCount{{Condition: "clear sky", Days: 1}},
				TotalDays:            1,
			},
		},
		Flights: models.FlightResult{Status: models.FlightStatusSuccess, Flights: []models.FlightOffer{{
			Price: models.Price{Total: "210.00", Currency: "EUR"},
			Itineraries: []models.Itinerary{{Segments: []models.Segment{{
				Departure: models.Endpoint{Airport: "LIS", Time: "2025-06-01T08:00:00"},
				Arrival:   models.Endpoint{Airport: "ZRH", Time: "2025-06-01T12:00:00"},
				Carrier:   "LX", FlightNumber: "2085",
			}}}},
		}}},
		Plan:        "Day 1: Old Town walk.\nDay 2: Lake cruise.",
		GeneratedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPlanPDF_Renders(t *testing.T) {
	out, err := PlanPDF(samplePlan())
	if err != nil {
		t.Fatalf("PlanPDF() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(len(out), 8)])
	}
}

func TestPlanPDF_MissingSections(t *testing.T) {
	p := samplePlan()
	p.Weather = models.WeatherReport{City: "Zürich", Forecast: []models.DailyObservation{}, Error: "Failed to fetch weather data"}
	p.Flights = models.FlightResult{Status: models.FlightStatusError, Flights: []models.FlightOffer{}, Error: "Failed to fetch flight data"}

	out, err := PlanPDF(p)
	if err != nil {
		t.Fatalf("PlanPDF() error = %v", err)
	}
	if len(out) == 0 {
		t.Error("empty PDF")
	}
}

func TestPlanPDF_NilResult(t *testing.T) {
	if _, err := PlanPDF(nil); !errors.Is(err, ErrNoResult) {
		t.Errorf("PlanPDF(nil) error = %v, want ErrNoResult", err)
	}
}
