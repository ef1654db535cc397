package models

import "time"

// Trip holds the parameters collected by the planner form.
type Trip struct {
	OriginCity      string    `json:"origin_city"`
	OriginIATA      string    `json:"origin_iata"`
	DestinationCity string    `json:"destination_city"`
	DestinationIATA string    `json:"destination_iata"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Preferences     string    `json:"preferences"`
}

// PlanResult is the immutable outcome of one planning run.
type PlanResult struct {
	ID          string        `json:"id"`
	Trip        Trip          `json:"trip"`
	Weather     WeatherReport `json:"weather"`
	Flights     FlightResult  `json:"flights"`
	Plan        string        `json:"plan"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// DateLayout is the ISO calendar date format used on every wire boundary.
const DateLayout = "2006-01-02"
