package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/summary"
)

// ErrNoResult is returned when there is nothing to render.
var ErrNoResult = errors.New("no plan result")

// PlanPDF renders a plan result as an A4 itinerary: trip overview, generated plan,
// weather summary, daily observations and flight options. Missing sections print a notice.
func PlanPDF(result *models.PlanResult) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	// Core fonts are cp1252; translate UTF-8 input (°, accented city names).
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(170, 10, tr("Travel Plan: "+result.Trip.DestinationCity), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Generated "+result.GeneratedAt.UTC().Format("02 Jan 2006, 15:04 UTC")+"  |  "+result.ID, "", 1, "L", false, 0, "")
	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 6, tr(value), "", 1, "L", false, 0, "")
	}
	notice := func(text string) {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(130, 90, 20)
		pdf.MultiCell(170, 5, tr(text), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	trip := result.Trip
	section("Trip Overview")
	row("Route", fmt.Sprintf("%s (%s) -> %s (%s)", trip.OriginCity, trip.OriginIATA, trip.DestinationCity, trip.DestinationIATA))
	row("Dates", trip.StartDate.Format(models.DateLayout)+" to "+trip.EndDate.Format(models.DateLayout))
	if trip.Preferences != "" {
		row("Preferences", trip.Preferences)
	}

	section("Travel Plan")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(170, 5, tr(result.Plan), "", "L", false)

	section("Weather (same period last year)")
	if s := result.Weather.Summary; s != nil {
		row("Temperature", fmt.Sprintf("%s (min %s, max %s)", s.Temperature.Average, s.Temperature.Min, s.Temperature.Max))
		row("Humidity", s.Humidity.Average)
		row("Wind speed", s.WindSpeed.Average)
		for _, c := range s.MostCommonConditions {
			row("Conditions", fmt.Sprintf("%s (%d days)", c.Condition, c.Days))
		}
		row("Days sampled", fmt.Sprint(s.TotalDays))
	} else {
		notice(unavailableReason("Weather forecast data is not available", result.Weather.Error))
	}

	if len(result.Weather.Forecast) > 0 {
		pdf.Ln(2)
		widths := []float64{30, 30, 60, 25, 25}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range []string{"Date", "Temp", "Conditions", "Humidity", "Wind"} {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for _, d := range result.Weather.Forecast {
			cells := []string{
				d.Date,
				summary.Celsius(d.Temperature),
				d.Conditions,
				summary.Percent(d.Humidity),
				summary.Wind(d.WindSpeed),
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	section("Flight Options")
	if len(result.Flights.Flights) == 0 {
		notice(unavailableReason("No flight information available", result.Flights.Error))
	}
	for i, f := range result.Flights.Flights {
		row(fmt.Sprintf("Option %d", i+1), f.Price.Total+" "+f.Price.Currency)
		for _, it := range f.Itineraries {
			for _, seg := range it.Segments {
				row("  "+seg.Carrier+" "+seg.FlightNumber,
					fmt.Sprintf("%s %s -> %s %s", seg.Departure.Airport, seg.Departure.Time, seg.Arrival.Airport, seg.Arrival.Time))
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func unavailableReason(msg, reason string) string {
	if reason == "" {
		return msg
	}
	return msg + ": " + reason
}
