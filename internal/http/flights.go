package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/validation"
)

// FlightLooker searches flight offers. ok is false when the upstream failed.
type FlightLooker interface {
	Lookup(ctx context.Context, origin, destination string, departure time.Time) (models.FlightResult, bool)
}

// FlightHandler serves the flight service API.
type FlightHandler struct {
	flights FlightLooker
	logger  *zap.Logger
}

func NewFlightHandler(flights FlightLooker, logger *zap.Logger) *FlightHandler {
	return &FlightHandler{flights: flights, logger: logger}
}

// PostFlights handles POST /flights. Bad input is 400 and an upstream failure is 502,
// both with {status: "error", flights: [], error}.
func (h *FlightHandler) PostFlights(w http.ResponseWriter, r *http.Request) {
	var req client.FlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failedFlights("request body must be JSON with origin_iata, destination_iata and departure_date"))
		return
	}
	origin, err := validation.ValidateIATA(req.OriginIATA)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failedFlights("origin: "+err.Error()))
		return
	}
	destination, err := validation.ValidateIATA(req.DestinationIATA)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failedFlights("destination: "+err.Error()))
		return
	}
	departure, err := validation.ParseDate(req.DepartureDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failedFlights("departure date: "+err.Error()))
		return
	}

	result, ok := h.flights.Lookup(r.Context(), origin, destination, departure)
	if !ok {
		degraded.RecordError()
		loggerFromContext(r.Context(), h.logger).Warn("flight lookup failed",
			zap.String("origin", origin), zap.String("destination", destination), zap.String("error", result.Error))
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	degraded.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

func failedFlights(msg string) models.FlightResult {
	return models.FlightResult{Status: models.FlightStatusError, Flights: []models.FlightOffer{}, Error: msg}
}
