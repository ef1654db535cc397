package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

var (
	tripStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tripEnd   = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
)

func TestWeatherServiceClient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req WeatherRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.City != "Lisbon" || req.StartDate != "2025-06-01" || req.EndDate != "2025-06-03" {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(models.WeatherReport{
			City:     "Lisbon",
			Forecast: []models.DailyObservation{{Date: "2024-06-01", Temperature: 20, Conditions: "clear sky"}},
			Summary:  &models.WeatherSummary{TotalDays: 1},
		})
	}))
	defer srv.Close()

	report := NewWeatherServiceClient(srv.URL, time.Second).Weather(context.Background(), "Lisbon", tripStart, tripEnd)
	if report.Error != "" || len(report.Forecast) != 1 || report.Summary == nil {
		t.Errorf("Weather() = %+v", report)
	}
}

func TestWeatherServiceClient_Failures(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"city":"Atlantis","forecast":[],"summary":null,"error":"location not found"}`))
		}))
		defer srv.Close()

		report := NewWeatherServiceClient(srv.URL, time.Second).Weather(context.Background(), "Atlantis", tripStart, tripEnd)
		if report.Error != MsgWeatherFetchFailed {
			t.Errorf("Error = %q, want %q", report.Error, MsgWeatherFetchFailed)
		}
		if report.Forecast == nil || len(report.Forecast) != 0 || report.Summary != nil {
			t.Errorf("report = %+v, want empty forecast and nil summary", report)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := srv.URL
		srv.Close()

		report := NewWeatherServiceClient(url, time.Second).Weather(context.Background(), "Lisbon", tripStart, tripEnd)
		if report.Error == "" || report.Error == MsgWeatherFetchFailed {
			t.Errorf("Error = %q, want transport error text", report.Error)
		}
		if len(report.Forecast) != 0 {
			t.Errorf("Forecast = %v, want empty", report.Forecast)
		}
	})
}

func TestFlightServiceClient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req FlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.OriginIATA != "LIS" || req.DestinationIATA != "JFK" || req.DepartureDate != "2025-06-01" {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"status":"success","flights":[{"price":{"total":"100","currency":"EUR"},"itineraries":[]}]}`))
	}))
	defer srv.Close()

	result := NewFlightServiceClient(srv.URL, time.Second).Flights(context.Background(), "LIS", "JFK", tripStart)
	if result.Status != models.FlightStatusSuccess || len(result.Flights) != 1 || result.Error != "" {
		t.Errorf("Flights() = %+v", result)
	}
}

func TestFlightServiceClient_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error","flights":[],"error":"upstream"}`))
	}))
	defer srv.Close()

	result := NewFlightServiceClient(srv.URL, time.Second).Flights(context.Background(), "LIS", "JFK", tripStart)
	if result.Error != MsgFlightFetchFailed || result.Flights == nil || len(result.Flights) != 0 {
		t.Errorf("Flights() = %+v", result)
	}
}
