package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// OpenWeatherClient talks to the OpenWeather geocoding and One Call history APIs.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if err := requireKey("OpenWeather API key", apiKey); err != nil {
		return nil, err
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type geocodeEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Geocode resolves a city name to coordinates using the first direct-geocoding match.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geo/1.0/direct?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("create request: %w", err)
	}

	var entries []geocodeEntry
	if err := do(c.client, ProviderGeocoding, req, &entries); err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(entries) == 0 {
		return models.Coordinates{}, fmt.Errorf("geocode %q: %w", city, ErrLocationNotFound)
	}

	e := entries[0]
	return models.Coordinates{Lat: e.Lat, Lon: e.Lon, Name: e.Name, Country: e.Country}, nil
}

// ValidateAPIKey issues a cheap geocoding call and reports a rejected key.
func (c *OpenWeatherClient) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.Geocode(ctx, "London")
	if err != nil && !errors.Is(err, ErrLocationNotFound) {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
