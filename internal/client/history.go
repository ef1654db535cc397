package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/calendar"
	"github.com/kjstillabower/travel-planner-service/internal/models"
)

type timemachineResponse struct {
	Data []struct {
		Dt        int64   `json:"dt"`
		Temp      float64 `json:"temp"`
		Humidity  float64 `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		Weather   []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"data"`
}

// Observation fetches the recorded weather for day at coords. The first data point
// of the day is taken as representative. A response with no data points returns ErrNoData.
func (c *OpenWeatherClient) Observation(ctx context.Context, coords models.Coordinates, day time.Time) (models.DailyObservation, error) {
	day = calendar.Date(day)

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("dt", strconv.FormatInt(day.Unix(), 10))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/3.0/onecall/timemachine?"+params.Encode(), nil)
	if err != nil {
		return models.DailyObservation{}, fmt.Errorf("create request: %w", err)
	}

	date := day.Format(models.DateLayout)
	var apiResp timemachineResponse
	if err := do(c.client, ProviderHistory, req, &apiResp); err != nil {
		return models.DailyObservation{}, fmt.Errorf("history %s: %w", date, err)
	}
	if len(apiResp.Data) == 0 {
		return models.DailyObservation{}, fmt.Errorf("history %s: %w", date, ErrNoData)
	}

	point := apiResp.Data[0]
	conditions := ""
	if len(point.Weather) > 0 {
		conditions = point.Weather[0].Main
		if point.Weather[0].Description != "" {
			conditions = point.Weather[0].Description
		}
	}
	if conditions == "" {
		return models.DailyObservation{}, fmt.Errorf("history %s: missing conditions: %w", date, ErrNoData)
	}

	return models.DailyObservation{
		Date:        date,
		Temperature: point.Temp,
		Conditions:  conditions,
		Humidity:    point.Humidity,
		WindSpeed:   point.WindSpeed,
	}, nil
}
