package models

import "time"

// DailyObservation is one day of historical weather, taken from the first
// data point the provider reports for that day.
type DailyObservation struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Conditions  string  `json:"conditions"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Stat holds display-ready aggregates, one decimal with unit suffix.
type Stat struct {
	Average string `json:"average"`
	Min     string `json:"min"`
	Max     string `json:"max"`
}

type ConditionCount struct {
	Condition string `json:"condition"`
	Days      int    `json:"days"`
}

// WeatherSummary aggregates a non-empty forecast.
type WeatherSummary struct {
	Temperature          Stat             `json:"temperature"`
	Humidity             Stat             `json:"humidity"`
	WindSpeed            Stat             `json:"wind_speed"`
	MostCommonConditions []ConditionCount `json:"most_common_conditions"`
	TotalDays            int              `json:"total_days"`
}

// WeatherReport is the weather service response. Summary is nil when no
// observations were collected; Error is set for not-found and no-data outcomes.
type WeatherReport struct {
	City      string             `json:"city"`
	Forecast  []DailyObservation `json:"forecast"`
	Summary   *WeatherSummary    `json:"summary"`
	Timestamp time.Time          `json:"timestamp"`
	Note      string             `json:"note,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Coordinates is a resolved geocoding match.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name,omitempty"`
	Country string  `json:"country,omitempty"`
}
