package planner

import (
	"context"

	"go.uber.org/zap"

	"github.com/kjstillabower/travel-planner-service/internal/models"
	"github.com/kjstillabower/travel-planner-service/internal/observability"
)

// ErrorPrefix starts the plan text when generation fails.
const ErrorPrefix = "Error generating travel plan: "

// Completer sends a prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator turns a trip plus its weather and flights into plan text.
type Generator struct {
	llm    Completer
	logger *zap.Logger
}

func NewGenerator(llm Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: llm, logger: logger}
}

// Generate never fails: an LLM error comes back as ErrorPrefix followed by the error text,
// and ok is false.
func (g *Generator) Generate(ctx context.Context, trip models.Trip, summary *models.WeatherSummary, flights models.FlightResult) (plan string, ok bool) {
	prompt := BuildPrompt(trip, summary, flights)
	text, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		observability.PlansTotal.WithLabelValues("llm_error").Inc()
		g.logger.Error("plan generation failed", zap.String("destination", trip.DestinationCity), zap.Error(err))
		return ErrorPrefix + err.Error(), false
	}
	observability.PlansTotal.WithLabelValues("success").Inc()
	g.logger.Info("plan generated", zap.String("destination", trip.DestinationCity), zap.Int("prompt_chars", len(prompt)), zap.Int("plan_chars", len(text)))
	return text, true
}
