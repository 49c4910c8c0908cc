// Package risk asks a language model to judge port-operation risk from a
// weather forecast and recent maritime news.
package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/port-risk-service/internal/adapter/llm"
	"github.com/couchcryptid/port-risk-service/internal/domain"
)

const (
	scoreMaxTokens  = 30
	statusMaxTokens = 150

	// maxForecastSteps keeps the prompt to the next 24 hours of 3-hour steps.
	maxForecastSteps = 8
	maxNewsItems     = 5
)

// Completer is the subset of the LLM client the scorer needs.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Scorer implements domain.RiskScorer over a chat-completion model.
type Scorer struct {
	llm   Completer
	model string
}

// NewScorer creates a scorer for the given model, e.g. "gpt-3.5-turbo".
func NewScorer(c Completer, model string) *Scorer {
	return &Scorer{llm: c, model: model}
}

// ScoreRisk asks for a single number in [0, 1] and returns the model's raw reply.
func (s *Scorer) ScoreRisk(ctx context.Context, weather []domain.Forecast, news []domain.Article) (string, error) {
	prompt := buildPrompt(weather, news,
		"Return a score of the risk level of this location between 0-1, where 0 is less risk and 1 is more risk.\n"+
			"No additional sentences just one score.")
	return s.complete(ctx, prompt, scoreMaxTokens)
}

// ClassifyRisk asks for "Operational", "High Risk" or "Closed" with a short
// rationale and returns the model's raw reply.
func (s *Scorer) ClassifyRisk(ctx context.Context, weather []domain.Forecast, news []domain.Article) (string, error) {
	prompt := buildPrompt(weather, news,
		`Return one of the following: "Operational", "High Risk", or "Closed" along with a rationale.`)
	return s.complete(ctx, prompt, statusMaxTokens)
}

func (s *Scorer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	text, err := s.llm.Complete(ctx, llm.Request{
		Model:       s.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: llm.Temperature(0),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("score risk: %w", err)
	}
	return text, nil
}

func buildPrompt(weather []domain.Forecast, news []domain.Article, instruction string) string {
	var b strings.Builder
	b.WriteString("Given the following data:\n")
	b.WriteString("- Weather: ")
	b.WriteString(summarizeWeather(weather))
	b.WriteString("\n- News: ")
	b.WriteString(summarizeNews(news))
	b.WriteString("\n\nAnalyze the impact on port operations.\n")
	b.WriteString("Consider conditions like high winds (>35 knots), storms, poor visibility, or strikes.\n")
	b.WriteString(instruction)
	return b.String()
}

func summarizeWeather(weather []domain.Forecast) string {
	if len(weather) == 0 {
		return "no forecast available"
	}
	if len(weather) > maxForecastSteps {
		weather = weather[:maxForecastSteps]
	}
	parts := make([]string, 0, len(weather))
	for _, f := range weather {
		parts = append(parts, fmt.Sprintf("%s %s, wind %.1f knots, visibility %.0f m, %.1fC, humidity %.0f%%",
			f.Timestamp.Format("2006-01-02 15:04"), f.Description, f.WindSpeedKnots(),
			f.VisibilityM, f.TemperatureC, f.HumidityPct))
	}
	return strings.Join(parts, "; ")
}

func summarizeNews(news []domain.Article) string {
	if len(news) == 0 {
		return "no recent news"
	}
	if len(news) > maxNewsItems {
		news = news[:maxNewsItems]
	}
	parts := make([]string, 0, len(news))
	for _, a := range news {
		parts = append(parts, fmt.Sprintf("%q: %s", a.Title, a.Content))
	}
	return strings.Join(parts, " | ")
}
