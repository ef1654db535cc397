package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/client"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/validation"
)

const (
	cityMinLength = 1
	cityMaxLength = 100
)

// WeatherReporter builds last-year weather reports.
type WeatherReporter interface {
	Report(ctx context.Context, city string, start, end time.Time) (models.WeatherReport, error)
}

// WeatherHandler serves the weather service API.
type WeatherHandler struct {
	reports WeatherReporter
	logger  *zap.Logger
}

func NewWeatherHandler(reports WeatherReporter, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{reports: reports, logger: logger}
}

// Root handles GET /.
func (h *WeatherHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Weather Service is running"})
}

// PostWeather handles POST /weather. Not-found is 404 and a geocoding upstream failure is 502,
// both with the report shape. No data at all is still a 200 report carrying an error message.
func (h *WeatherHandler) PostWeather(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context(), h.logger)

	var req client.WeatherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with city, start_date and end_date")
		return
	}

	city, err := validation.ValidateCity(req.City, cityMinLength, cityMaxLength)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failedReport(req.City, err))
		return
	}
	start, end, err := validation.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failedReport(city, err))
		return
	}

	report, err := h.reports.Report(r.Context(), city, start, end)
	switch {
	case err == nil:
		degraded.RecordSuccess()
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, client.ErrLocationNotFound):
		degraded.RecordSuccess()
		logger.Debug("city not found", zap.String("city", city))
		writeJSON(w, http.StatusNotFound, report)
	case errors.Is(err, context.Canceled):
		// Caller hung up mid-range; not an upstream fault.
		logger.Info("weather report canceled by caller", zap.String("city", city))
		writeJSON(w, http.StatusBadGateway, report)
	default:
		degraded.RecordError()
		logger.Warn("weather report failed", zap.String("city", city), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, report)
	}
}

func failedReport(city string, err error) models.WeatherReport {
	return models.WeatherReport{
		City:      city,
		Forecast:  []models.DailyObservation{},
		Timestamp: time.Now().UTC(),
		Error:     err.Error(),
	}
}
