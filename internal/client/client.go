package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrRateLimited      = errors.New("rate limited")
	ErrNoData           = errors.New("no data")
)

// Provider labels for upstream metrics.
const (
	ProviderGeocoding      = "geocoding"
	ProviderHistory        = "history"
	ProviderAmadeusAuth    = "amadeus_auth"
	ProviderAmadeus        = "amadeus"
	ProviderOpenAI         = "openai"
	ProviderWeatherService = "weather_service"
	ProviderFlightService  = "flight_service"
)

const maxErrorBody = 512

func requireKey(name, key string) error {
	if key == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidAPIKey, name)
	}
	if len(key) < 10 {
		return fmt.Errorf("%w: %s appears invalid (too short)", ErrInvalidAPIKey, name)
	}
	return nil
}

// do sends req once, records upstream metrics under provider and decodes a 2xx JSON body into out.
// Non-2xx responses map to the package sentinels. No retries.
func do(hc *http.Client, provider string, req *http.Request, out any) error {
	start := time.Now()

	if corrID := extractCorrelationID(req.Context()); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		observe(provider, "error", start, err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := handleErrorResponse(resp); err != nil {
		observe(provider, statusLabel(resp.StatusCode), start, err)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			err = fmt.Errorf("parse response: %w", err)
			observe(provider, "error", start, err)
			return err
		}
	}
	observe(provider, statusLabel(resp.StatusCode), start, nil)
	return nil
}

func observe(provider, status string, start time.Time, err error) {
	observability.UpstreamCallsTotal.WithLabelValues(provider, status).Inc()
	observability.UpstreamDuration.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues(provider, string(CategorizeError(err))).Inc()
	}
}

func handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrInvalidAPIKey, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}
	if len(body) > 0 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamFailure, resp.StatusCode, body)
	}
	return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
