//go:build openweather

package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenWeatherMap API and require a valid OPENWEATHER_API_KEY env var.
// Run with: go test -tags=openweather ./internal/adapter/openweather/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		t.Fatal("OPENWEATHER_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openweathermap.org/data/2.5",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_FetchForecast_Rotterdam(t *testing.T) {
	c := smokeClient(t)

	forecasts, err := c.FetchForecast(context.Background(), 51.9244, 4.4777)
	require.NoError(t, err)
	require.NotEmpty(t, forecasts)

	for i := 1; i < len(forecasts); i++ {
		assert.False(t, forecasts[i].Timestamp.Before(forecasts[i-1].Timestamp))
	}
	assert.NotEmpty(t, forecasts[0].Description)
	assert.GreaterOrEqual(t, forecasts[0].HumidityPct, 0.0)
}
