package planner

import (
	"fmt"
	"strings"

	"github.com/kjstillabower/travel-planner-service/internal/models"
)

const (
	DefaultModel        = "gpt-3.5-turbo"
	DefaultSystemPrompt = "You are a helpful travel planning assistant with expertise in analyzing flight options and creating optimized vacation plans."
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1500

	noFlights   = "No flight options available."
	unavailable = "unavailable"
)

// BuildPrompt renders the user prompt for a trip. summary may be nil; flights with an error or
// no offers render as noFlights.
func BuildPrompt(trip models.Trip, summary *models.WeatherSummary, flights models.FlightResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed travel plan for %s from %s to %s.\n",
		trip.DestinationCity, trip.StartDate.Format(models.DateLayout), trip.EndDate.Format(models.DateLayout))
	fmt.Fprintf(&b, "Preferences: %s\n\n", trip.Preferences)

	b.WriteString("Weather Summary for the period:\n")
	writeWeather(&b, summary)

	b.WriteString("\nAvailable Flight Options:\n")
	b.WriteString(FormatFlightOptions(flights))
	b.WriteString("\n")

	b.WriteString(`
Please analyze the flight options and recommend the best choice considering:
1. Price vs. duration ratio
2. Convenient departure/arrival times for vacation planning
3. Number of connections (direct flights preferred)
4. Overall value for money

Include in your response:
1. Flight recommendation with justification
2. Daily itinerary (considering the weather conditions and flight times)
3. Recommended activities (suitable for the expected weather)
4. Local transportation options
5. Dining recommendations
6. Budget considerations
7. Weather-appropriate packing suggestions

Format the response in a clear, organized manner with sections for flight analysis and travel plan.
`)
	return b.String()
}

func writeWeather(b *strings.Builder, s *models.WeatherSummary) {
	if s == nil {
		fmt.Fprintf(b, "- Average Temperature: %s\n", unavailable)
		fmt.Fprintf(b, "- Temperature Range: %s\n", unavailable)
		fmt.Fprintf(b, "- Most Common Weather Conditions: %s\n", unavailable)
		fmt.Fprintf(b, "- Average Humidity: %s\n", unavailable)
		fmt.Fprintf(b, "- Average Wind Speed: %s\n", unavailable)
		return
	}
	conditions := make([]string, 0, len(s.MostCommonConditions))
	for _, c := range s.MostCommonConditions {
		conditions = append(conditions, c.Condition)
	}
	fmt.Fprintf(b, "- Average Temperature: %s\n", s.Temperature.Average)
	fmt.Fprintf(b, "- Temperature Range: %s to %s\n", s.Temperature.Min, s.Temperature.Max)
	fmt.Fprintf(b, "- Most Common Weather Conditions: %s\n", strings.Join(conditions, ", "))
	fmt.Fprintf(b, "- Average Humidity: %s\n", s.Humidity.Average)
	fmt.Fprintf(b, "- Average Wind Speed: %s\n", s.WindSpeed.Average)
}

// FormatFlightOptions lists each offer as "Option N" with its price and every segment.
func FormatFlightOptions(flights models.FlightResult) string {
	if flights.Error != "" || len(flights.Flights) == 0 {
		return noFlights
	}

	options := make([]string, 0, len(flights.Flights))
	for i, f := range flights.Flights {
		var b strings.Builder
		fmt.Fprintf(&b, "\nOption %d:\n", i+1)
		fmt.Fprintf(&b, "Price: %s %s\n", f.Price.Total, f.Price.Currency)
		for _, it := range f.Itineraries {
			for _, seg := range it.Segments {
				fmt.Fprintf(&b, "Flight: %s %s\n", seg.Carrier, seg.FlightNumber)
				fmt.Fprintf(&b, "From: %s at %s\n", seg.Departure.Airport, seg.Departure.Time)
				fmt.Fprintf(&b, "To: %s at %s\n", seg.Arrival.Airport, seg.Arrival.Time)
			}
		}
		options = append(options, b.String())
	}
	return strings.Join(options, "\n")
}
