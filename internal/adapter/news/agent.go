// Package news gathers maritime news through an online language model,
// merges the per-topic results and caches them.
package news

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/port-risk-service/internal/adapter/llm"
	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
)

// Source is stamped on every article produced by the agent.
const Source = "Perplexity AI"

const systemPrompt = "You are a maritime news expert. Provide recent and relevant maritime industry news."

// Completer is the subset of the LLM client the agent needs.
type Completer interface {
	Complete(ctx context.Context, r llm.Request) (string, error)
}

// Agent implements domain.NewsFetcher by prompting a search-backed model for
// three items per topic and parsing the reply strictly.
type Agent struct {
	llm     Completer
	model   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAgent creates a news agent over an OpenAI-compatible completer.
func NewAgent(c Completer, model string, metrics *observability.Metrics, logger *slog.Logger) *Agent {
	return &Agent{llm: c, model: model, metrics: metrics, logger: logger}
}

// FetchNews returns the well-formed items for one topic. Malformed items are
// dropped and counted; they never fail the call.
func (a *Agent) FetchNews(ctx context.Context, topic string) ([]domain.Article, error) {
	text, err := a.llm.Complete(ctx, llm.Request{
		Model: a.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(topic)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch news %q: %w", topic, err)
	}

	articles, dropped := domain.ParseNewsItems(text, Source)
	if dropped > 0 {
		a.metrics.ParseFailures.WithLabelValues("news_item").Add(float64(dropped))
		a.logger.Warn("dropped malformed news items", "topic", topic, "dropped", dropped)
	}
	if len(articles) == 0 {
		a.logger.Info("no news items parsed", "topic", topic)
	}
	return articles, nil
}

func userPrompt(topic string) string {
	return fmt.Sprintf("Please provide 3 recent news items about %s. Format each item as:\n"+
		"TITLE: [news title] \\n CONTENT: [detailed content]\n"+
		"Keep each item concise and factual.", topic)
}
