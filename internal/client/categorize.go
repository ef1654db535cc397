package client

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/kjstillabower/travel-planner-service/internal/circuitbreaker"
)

// ErrorCategory is a stable metric label for an upstream error.
type ErrorCategory string

const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey    ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstream         ErrorCategory = "upstream_error"
	ErrorCategoryNoData           ErrorCategory = "no_data"
	ErrorCategoryCircuitOpen      ErrorCategory = "circuit_open"
	ErrorCategoryParsing          ErrorCategory = "parsing"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// sentinelCategories is checked in order; the first match wins.
var sentinelCategories = []struct {
	err      error
	category ErrorCategory
}{
	{context.DeadlineExceeded, ErrorCategoryTimeout},
	{context.Canceled, ErrorCategoryTimeout},
	{circuitbreaker.ErrOpen, ErrorCategoryCircuitOpen},
	{ErrInvalidAPIKey, ErrorCategoryInvalidAPIKey},
	{ErrLocationNotFound, ErrorCategoryLocationNotFound},
	{ErrRateLimited, ErrorCategoryRateLimited},
	{ErrNoData, ErrorCategoryNoData},
	{ErrUpstreamFailure, ErrorCategoryUpstream},
}

// CategorizeError maps err to an ErrorCategory. Sentinels win over transport errors,
// which win over message heuristics. nil maps to "".
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	for _, sc := range sentinelCategories {
		if errors.Is(err, sc.err) {
			return sc.category
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorCategoryTimeout
		}
		return ErrorCategoryNetwork
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorCategoryTimeout
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return ErrorCategoryNetwork
	case strings.Contains(msg, "parse response"), strings.Contains(msg, "unmarshal"):
		return ErrorCategoryParsing
	}
	return ErrorCategoryUnknown
}
