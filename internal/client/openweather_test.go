package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

const testKey = "test-api-key-12345"

func TestNewOpenWeatherClient_InvalidAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr error
	}{
		{name: "empty API key", apiKey: "", wantErr: ErrInvalidAPIKey},
		{name: "too short API key", apiKey: "short", wantErr: ErrInvalidAPIKey},
		{name: "valid API key", apiKey: testKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewOpenWeatherClient(tt.apiKey, "https://api.test.com", 2*time.Second)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewOpenWeatherClient() error = %v, want %v", err, tt.wantErr)
				}
				if c != nil {
					t.Errorf("NewOpenWeatherClient() expected nil client on error")
				}
				return
			}
			if err != nil || c == nil {
				t.Fatalf("NewOpenWeatherClient() = %v, %v", c, err)
			}
		})
	}
}

func newWeatherTestClient(t *testing.T, h http.HandlerFunc) *OpenWeatherClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewOpenWeatherClient(testKey, srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

func TestOpenWeatherClient_Geocode_Success(t *testing.T) {
	c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("path = %s, want /geo/1.0/direct", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Lisbon" || q.Get("limit") != "1" || q.Get("appid") != testKey {
			t.Errorf("query = %v", q)
		}
		if got := r.Header.Get("X-Correlation-ID"); got != "corr-1" {
			t.Errorf("X-Correlation-ID = %q, want corr-1", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "Lisbon", "lat": 38.72, "lon": -9.14, "country": "PT"},
		})
	})

	ctx := context.WithValue(context.Background(), "correlation_id", "corr-1")
	got, err := c.Geocode(ctx, "Lisbon")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	want := models.Coordinates{Lat: 38.72, Lon: -9.14, Name: "Lisbon", Country: "PT"}
	if got != want {
		t.Errorf("Geocode() = %+v, want %+v", got, want)
	}
}

func TestOpenWeatherClient_Geocode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty result", status: http.StatusOK, body: "[]", wantErr: ErrLocationNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"cod":401}`, wantErr: ErrInvalidAPIKey},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, wantErr: ErrUpstreamFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Geocode(context.Background(), "Nowhere")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Geocode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenWeatherClient_Observation(t *testing.T) {
	day := time.Date(2023, 6, 1, 15, 30, 0, 0, time.UTC)
	c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/3.0/onecall/timemachine" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("dt") != "1685577600" {
			t.Errorf("dt = %s, want midnight UTC 1685577600", q.Get("dt"))
		}
		if q.Get("units") != "metric" || q.Get("lat") != "38.72" || q.Get("lon") != "-9.14" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"dt":1685577600,"temp":21.4,"humidity":60,"wind_speed":3.2,"weather":[{"main":"Clear","description":"clear sky"}]},
			{"dt":1685581200,"temp":30,"humidity":10,"wind_speed":9,"weather":[{"main":"Rain","description":"rain"}]}
		]}`))
	})

	got, err := c.Observation(context.Background(), models.Coordinates{Lat: 38.72, Lon: -9.14}, day)
	if err != nil {
		t.Fatalf("Observation() error = %v", err)
	}
	want := models.DailyObservation{Date: "2023-06-01", Temperature: 21.4, Conditions: "clear sky", Humidity: 60, WindSpeed: 3.2}
	if got != want {
		t.Errorf("Observation() = %+v, want %+v", got, want)
	}
}

func TestOpenWeatherClient_Observation_NoData(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty data", body: `{"data":[]}`},
		{name: "missing data", body: `{}`},
		{name: "missing weather", body: `{"data":[{"temp":10,"humidity":50,"wind_speed":1,"weather":[]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Observation(context.Background(), models.Coordinates{}, time.Now())
			if !errors.Is(err, ErrNoData) {
				t.Errorf("Observation() error = %v, want ErrNoData", err)
			}
		})
	}
}

func TestOpenWeatherClient_Observation_MalformedJSON(t *testing.T) {
	c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	})
	_, err := c.Observation(context.Background(), models.Coordinates{}, time.Now())
	if err == nil || CategorizeError(err) != ErrorCategoryParsing {
		t.Errorf("Observation() error = %v, want parsing error", err)
	}
}

func TestOpenWeatherClient_ValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "rejected", status: http.StatusUnauthorized, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newWeatherTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("[]"))
			})
			err := c.ValidateAPIKey(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "success", 204: "success", 429: "rate_limited", 404: "client_error", 503: "server_error", 101: "error"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
