// Package summary reduces daily observations to display statistics.
package summary

import (
	"fmt"
	"sort"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

// MaxConditions bounds the most-common-conditions list.
const MaxConditions = 3

const (
	unitCelsius = "°C"
	unitPercent = "%"
	unitWind    = " m/s"
)

// Summarize aggregates the forecast. It returns nil for an empty forecast.
// The result depends only on the input, so equal inputs marshal identically.
func Summarize(forecast []models.DailyObservation) *models.WeatherSummary {
	if len(forecast) == 0 {
		return nil
	}

	temps := make([]float64, len(forecast))
	humidities := make([]float64, len(forecast))
	winds := make([]float64, len(forecast))
	conditions := make([]string, len(forecast))
	for i, day := range forecast {
		temps[i] = day.Temperature
		humidities[i] = day.Humidity
		winds[i] = day.WindSpeed
		conditions[i] = day.Conditions
	}

	return &models.WeatherSummary{
		Temperature:          stat(temps, unitCelsius),
		Humidity:             stat(humidities, unitPercent),
		WindSpeed:            stat(winds, unitWind),
		MostCommonConditions: MostCommon(conditions, MaxConditions),
		TotalDays:            len(forecast),
	}
}

// MostCommon counts labels and returns up to n of them by descending count.
// Equal counts keep the order in which labels were first seen.
func MostCommon(labels []string, n int) []models.ConditionCount {
	counts := make(map[string]int, len(labels))
	var order []string
	for _, l := range labels {
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}

	out := make([]models.ConditionCount, 0, len(order))
	for _, l := range order {
		out = append(out, models.ConditionCount{Condition: l, Days: counts[l]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Days > out[j].Days
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func stat(values []float64, unit string) models.Stat {
	lo, hi, sum := values[0], values[0], 0.0
	for _, v := range values {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return models.Stat{
		Average: format(sum/float64(len(values)), unit),
		Min:     format(lo, unit),
		Max:     format(hi, unit),
	}
}

// Celsius formats a temperature the way the summary does.
func Celsius(v float64) string { return format(v, unitCelsius) }

// Percent formats a relative humidity.
func Percent(v float64) string { return format(v, unitPercent) }

// Wind formats a wind speed.
func Wind(v float64) string { return format(v, unitWind) }

func format(v float64, unit string) string {
	return fmt.Sprintf("%.1f%s", v, unit)
}
