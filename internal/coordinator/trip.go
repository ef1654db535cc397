package coordinator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kjstillabower/travel-planner-service/internal/calendar"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/validation"
)

// ErrMissingFields is returned when any required trip field is blank.
var ErrMissingFields = errors.New("please fill in all required fields")

// FieldError names the trip field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *FieldError) Unwrap() error { return e.Err }

// TripForm is the raw user input as submitted by the UI.
type TripForm struct {
	OriginCity      string
	OriginIATA      string
	DestinationCity string
	DestinationIATA string
	StartDate       string
	EndDate         string
	Preferences     string
}

// ParseTrip validates raw form input and returns a normalized Trip.
func ParseTrip(f TripForm) (models.Trip, error) {
	for _, v := range []string{f.OriginCity, f.OriginIATA, f.DestinationCity, f.DestinationIATA, f.StartDate, f.EndDate} {
		if strings.TrimSpace(v) == "" {
			return models.Trip{}, ErrMissingFields
		}
	}
	start, end, err := validation.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return models.Trip{}, &FieldError{Field: "dates", Err: err}
	}
	return ValidateTrip(models.Trip{
		OriginCity:      f.OriginCity,
		OriginIATA:      f.OriginIATA,
		DestinationCity: f.DestinationCity,
		DestinationIATA: f.DestinationIATA,
		StartDate:       start,
		EndDate:         end,
		Preferences:     strings.TrimSpace(f.Preferences),
	})
}

// ValidateTrip checks required fields, IATA codes and date order, returning the trip with
// trimmed cities and upper-cased codes.
func ValidateTrip(t models.Trip) (models.Trip, error) {
	if strings.TrimSpace(t.OriginCity) == "" || strings.TrimSpace(t.DestinationCity) == "" ||
		strings.TrimSpace(t.OriginIATA) == "" || strings.TrimSpace(t.DestinationIATA) == "" ||
		t.StartDate.IsZero() || t.EndDate.IsZero() {
		return models.Trip{}, ErrMissingFields
	}

	var err error
	if t.OriginCity, err = validation.ValidateCity(t.OriginCity, 1, 100); err != nil {
		return models.Trip{}, &FieldError{Field: "origin_city", Err: err}
	}
	if t.DestinationCity, err = validation.ValidateCity(t.DestinationCity, 1, 100); err != nil {
		return models.Trip{}, &FieldError{Field: "destination_city", Err: err}
	}
	if t.OriginIATA, err = validation.ValidateIATA(t.OriginIATA); err != nil {
		return models.Trip{}, &FieldError{Field: "origin_iata", Err: err}
	}
	if t.DestinationIATA, err = validation.ValidateIATA(t.DestinationIATA); err != nil {
		return models.Trip{}, &FieldError{Field: "destination_iata", Err: err}
	}
	t.StartDate = calendar.Date(t.StartDate)
	t.EndDate = calendar.Date(t.EndDate)
	if t.EndDate.Before(t.StartDate) {
		return models.Trip{}, &FieldError{Field: "dates", Err: validation.ErrDateReversed}
	}
	return t, nil
}

