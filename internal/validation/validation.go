package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrCityEmpty is returned when a city is empty or whitespace-only after trim.
	ErrCityEmpty        = errors.New("city is required")
	ErrCityTooShort     = errors.New("city too short")
	ErrCityTooLong      = errors.New("city too long")
	ErrCityInvalidChars = errors.New("city contains invalid characters")

	// ErrIATAInvalid is returned for anything other than three ASCII letters.
	ErrIATAInvalid = errors.New("IATA code must be 3 letters")

	ErrDateEmpty    = errors.New("date is required")
	ErrDateInvalid  = errors.New("date must be YYYY-MM-DD")
	ErrDateReversed = errors.New("end date is before start date")
)

const dateLayout = "2006-01-02"

// ValidateCity trims the input, enforces length bounds (minLen, maxLen in runes; 0 disables)
// and restricts to letters, digits, space, comma, hyphen, period and apostrophe.
// Returns the trimmed string. Normalization (e.g. lowercase) is left to callers.
func ValidateCity(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrCityEmpty
	}
	if minLen > 0 && n < minLen {
		return "", ErrCityTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}

// ValidateIATA trims and upper-cases code and requires exactly three ASCII letters.
func ValidateIATA(code string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if len(s) != 3 {
		return "", ErrIATAInvalid
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", ErrIATAInvalid
		}
	}
	return s, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDateEmpty
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateInvalid, s)
	}
	return t, nil
}

// ParseDateRange parses both ends and requires end >= start. Single-day ranges are allowed.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, ErrDateReversed
	}
	return s, e, nil
}
