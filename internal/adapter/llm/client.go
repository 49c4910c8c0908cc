// Package llm is a minimal client for OpenAI-compatible chat-completion APIs.
// Both the Perplexity news agent and the OpenAI risk scorer go through it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat-completion request. Temperature is a pointer so that an
// explicit zero is sent.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// Client calls POST {baseURL}/chat/completions with bearer authentication.
type Client struct {
	service    string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a chat-completion client. service labels the upstream
// metrics, e.g. "perplexity" or "openai".
func NewClient(service, apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		service: service,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Complete sends the request and returns the first choice's message content.
func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	if c.apiKey == "" {
		return "", &domain.ConfigurationError{Kind: "option", Name: c.service + " api key", Reason: "not set"}
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(c.service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.service, "error").Inc()
		return "", fmt.Errorf("%s request: %w: %w", c.service, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(c.service, "error").Inc()
		return "", fmt.Errorf("%s API error: status %d: %s: %w", c.service, resp.StatusCode, body, domain.ErrUpstreamUnavailable)
	}

	var out completion
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.service, "error").Inc()
		return "", fmt.Errorf("decode %s response: %w: %w", c.service, domain.ErrMalformedUpstream, err)
	}
	if len(out.Choices) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(c.service, "empty").Inc()
		return "", fmt.Errorf("%s response has no choices: %w", c.service, domain.ErrMalformedUpstream)
	}

	c.metrics.UpstreamRequests.WithLabelValues(c.service, "success").Inc()
	c.logger.Debug("chat completion",
		"service", c.service,
		"model", r.Model,
		"duration", time.Since(start),
	)
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Chat-completion response types.

type completion struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}
