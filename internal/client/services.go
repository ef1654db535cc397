package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

const (
	MsgWeatherFetchFailed = "Failed to fetch weather data"
	MsgFlightFetchFailed  = "Failed to fetch flight data"
)

// WeatherRequest is the weather service request body.
type WeatherRequest struct {
	City      string `json:"city"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// FlightRequest is the flight service request body.
type FlightRequest struct {
	OriginIATA      string `json:"origin_iata"`
	DestinationIATA string `json:"destination_iata"`
	DepartureDate   string `json:"departure_date"`
}

// WeatherServiceClient calls the weather service. Failures come back inside the report.
type WeatherServiceClient struct {
	baseURL string
	client  *http.Client
}

func NewWeatherServiceClient(baseURL string, timeout time.Duration) *WeatherServiceClient {
	return &WeatherServiceClient{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: timeout}}
}

// Weather never returns an error: transport and non-200 failures are reported in the Error field
// with an empty forecast.
func (c *WeatherServiceClient) Weather(ctx context.Context, city string, start, end time.Time) models.WeatherReport {
	failed := func(msg string) models.WeatherReport {
		return models.WeatherReport{City: city, Forecast: []models.DailyObservation{}, Error: msg, Timestamp: time.Now().UTC()}
	}

	body, err := json.Marshal(WeatherRequest{
		City:      city,
		StartDate: start.Format(models.DateLayout),
		EndDate:   end.Format(models.DateLayout),
	})
	if err != nil {
		return failed(err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/weather", bytes.NewReader(body))
	if err != nil {
		return failed(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	var report models.WeatherReport
	if err := do(c.client, ProviderWeatherService, req, &report); err != nil {
		if isTransportError(err) {
			return failed(err.Error())
		}
		return failed(MsgWeatherFetchFailed)
	}
	if report.Forecast == nil {
		report.Forecast = []models.DailyObservation{}
	}
	return report
}

// FlightServiceClient calls the flight service. Failures come back inside the result.
type FlightServiceClient struct {
	baseURL string
	client  *http.Client
}

func NewFlightServiceClient(baseURL string, timeout time.Duration) *FlightServiceClient {
	return &FlightServiceClient{baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: timeout}}
}

// Flights never returns an error; see Weather.
func (c *FlightServiceClient) Flights(ctx context.Context, origin, destination string, departure time.Time) models.FlightResult {
	failed := func(msg string) models.FlightResult {
		return models.FlightResult{Status: models.FlightStatusError, Flights: []models.FlightOffer{}, Error: msg}
	}

	body, err := json.Marshal(FlightRequest{
		OriginIATA:      origin,
		DestinationIATA: destination,
		DepartureDate:   departure.Format(models.DateLayout),
	})
	if err != nil {
		return failed(err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/flights", bytes.NewReader(body))
	if err != nil {
		return failed(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.FlightResult
	if err := do(c.client, ProviderFlightService, req, &result); err != nil {
		if isTransportError(err) {
			return failed(err.Error())
		}
		return failed(MsgFlightFetchFailed)
	}
	if result.Flights == nil {
		result.Flights = []models.FlightOffer{}
	}
	return result
}

// isTransportError reports whether err came from the connection rather than an HTTP status.
func isTransportError(err error) bool {
	switch CategorizeError(err) {
	case ErrorCategoryTimeout, ErrorCategoryNetwork:
		return true
	}
	return strings.Contains(err.Error(), "http request failed")
}
