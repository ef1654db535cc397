package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/coordinator"
	"github.com/kjstillabower/travel-planner-service/internal/degraded"
	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/planner"
	"github.com/kjstillabower/travel-planner-service/internal/render"
	"github.com/kjstillabower/travel-planner-service/internal/summary"
	"github.com/kjstillabower/travel-planner-service/internal/weather"
)

// MsgMissingFields is shown when the form is submitted incomplete.
const MsgMissingFields = "Please fill in all required fields."

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").
	Funcs(template.FuncMap{
		"inc":     func(i int) int { return i + 1 },
		"celsius": summary.Celsius,
		"pct":     summary.Percent,
		"wind":    summary.Wind,
	}).
	ParseFS(templateFS, "templates/index.html"))

// TripPlanner runs the planning pipeline and holds the current result.
type TripPlanner interface {
	Plan(ctx context.Context, trip models.Trip) (*models.PlanResult, error)
	Current() *models.PlanResult
	Reset()
}

// UIHandler serves the planner web UI.
type UIHandler struct {
	planner TripPlanner
	logger  *zap.Logger
}

func NewUIHandler(p TripPlanner, logger *zap.Logger) *UIHandler {
	return &UIHandler{planner: p, logger: logger}
}

type pageData struct {
	Form   coordinator.TripForm
	Error  string
	Result *models.PlanResult
}

// Index handles GET /: the welcome text, or the current result.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, pageData{Result: h.planner.Current()})
}

// PostPlan handles POST /plan. Invalid input re-renders the form with a message and makes no
// upstream calls.
func (h *UIHandler) PostPlan(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context(), h.logger)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_FORM", "could not parse form")
		return
	}
	form := coordinator.TripForm{
		OriginCity:      r.PostFormValue("origin_city"),
		OriginIATA:      r.PostFormValue("origin_iata"),
		DestinationCity: r.PostFormValue("destination_city"),
		DestinationIATA: r.PostFormValue("destination_iata"),
		StartDate:       r.PostFormValue("start_date"),
		EndDate:         r.PostFormValue("end_date"),
		Preferences:     r.PostFormValue("preferences"),
	}

	var result *models.PlanResult
	trip, err := coordinator.ParseTrip(form)
	if err == nil {
		result, err = h.planner.Plan(r.Context(), trip)
	}
	if err != nil {
		logger.Warn("plan request rejected", zap.Error(err))
		msg := err.Error()
		if errors.Is(err, coordinator.ErrMissingFields) {
			msg = MsgMissingFields
		}
		h.renderPage(w, r, http.StatusBadRequest, pageData{Form: form, Error: msg, Result: h.planner.Current()})
		return
	}

	if planDegraded(result) {
		degraded.RecordError()
	} else {
		degraded.RecordSuccess()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// PostReset handles POST /reset.
func (h *UIHandler) PostReset(w http.ResponseWriter, r *http.Request) {
	h.planner.Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetPDF handles GET /plan.pdf.
func (h *UIHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	data, err := render.PlanPDF(h.planner.Current())
	if errors.Is(err, render.ErrNoResult) {
		writeError(w, r, http.StatusNotFound, "NO_PLAN", "no travel plan has been generated")
		return
	}
	if err != nil {
		loggerFromContext(r.Context(), h.logger).Error("pdf render failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "RENDER_FAILED", "could not render itinerary")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="travel-plan.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *UIHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		loggerFromContext(r.Context(), h.logger).Error("template render failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "RENDER_FAILED", "could not render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// planDegraded reports whether any dependency failed while building the result.
// A period with no recorded weather is a valid outcome, not a failure.
func planDegraded(result *models.PlanResult) bool {
	if strings.HasPrefix(result.Plan, planner.ErrorPrefix) {
		return true
	}
	if result.Flights.Status == models.FlightStatusError {
		return true
	}
	return result.Weather.Summary == nil && result.Weather.Error != weather.MsgNoData
}
