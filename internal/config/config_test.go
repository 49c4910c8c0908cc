package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.OpenWeatherBaseURL)
	assert.Equal(t, 10*time.Second, cfg.OpenWeatherTimeout)
	assert.Equal(t, "https://api.perplexity.ai", cfg.PerplexityBaseURL)
	assert.Equal(t, "sonar-pro", cfg.NewsModel)
	assert.Equal(t, 30*time.Minute, cfg.NewsCacheTTL)
	assert.Equal(t, 10, cfg.NewsLimit)
	assert.Equal(t, "gpt-3.5-turbo", cfg.RiskModel)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)

	assert.Equal(t, 3, cfg.RouteDensify)
	assert.False(t, cfg.RouteSeedSet)
	assert.False(t, cfg.RouteGeodesic)
	assert.Equal(t, []domain.BoundingBox{domain.SuezCanal}, cfg.SlowZones)

	assert.Equal(t, SinkNone, cfg.Sink)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "vessel-track-points", cfg.KafkaTrackTopic)
	assert.Equal(t, "tracks", cfg.NATSSubjectPrefix)
	assert.Equal(t, time.Minute, cfg.PublishInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://ports.example")
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("OPENWEATHER_TIMEOUT", "3s")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-key")
	t.Setenv("NEWS_CACHE_TTL", "5m")
	t.Setenv("NEWS_LIMIT", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RISK_MODEL", "gpt-4o-mini")
	t.Setenv("ROUTE_DENSIFY", "5")
	t.Setenv("ROUTE_SEED", "42")
	t.Setenv("ROUTE_GEODESIC", "true")
	t.Setenv("SLOW_ZONES", "29.9,31.3,32.2,32.6; 1.0,1.5,103.5,104.2")
	t.Setenv("SINK", "KAFKA")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TRACK_TOPIC", "tracks-test")
	t.Setenv("PUBLISH_INTERVAL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://ports.example"}, cfg.CORSOrigins)
	assert.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, 3*time.Second, cfg.OpenWeatherTimeout)
	assert.Equal(t, "pplx-key", cfg.PerplexityAPIKey)
	assert.Equal(t, 5*time.Minute, cfg.NewsCacheTTL)
	assert.Equal(t, 5, cfg.NewsLimit)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.RiskModel)
	assert.Equal(t, 5, cfg.RouteDensify)
	assert.True(t, cfg.RouteSeedSet)
	assert.Equal(t, uint64(42), cfg.RouteSeed)
	assert.True(t, cfg.RouteGeodesic)
	require.Len(t, cfg.SlowZones, 2)
	assert.Equal(t, domain.BoundingBox{MinLat: 1.0, MaxLat: 1.5, MinLon: 103.5, MaxLon: 104.2}, cfg.SlowZones[1])
	assert.Equal(t, SinkKafka, cfg.Sink)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tracks-test", cfg.KafkaTrackTopic)
	assert.Equal(t, 15*time.Second, cfg.PublishInterval)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"OPENWEATHER_TIMEOUT", "bad"},
		{"LLM_TIMEOUT", "-1s"},
		{"NEWS_CACHE_TTL", "0s"},
		{"PUBLISH_INTERVAL", "soon"},
		{"NEWS_LIMIT", "0"},
		{"NEWS_LIMIT", "ten"},
		{"ROUTE_DENSIFY", "-2"},
		{"ROUTE_SEED", "-1"},
		{"ROUTE_GEODESIC", "maybe"},
		{"SLOW_ZONES", "1,2,3"},
		{"SINK", "rabbitmq"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseSlowZones(t *testing.T) {
	zones, err := ParseSlowZones("")
	require.NoError(t, err)
	assert.Equal(t, []domain.BoundingBox{domain.SuezCanal}, zones)

	zones, err = ParseSlowZones("none")
	require.NoError(t, err)
	assert.Empty(t, zones)

	zones, err = ParseSlowZones("8.9,9.4,-79.9,-79.5;")
	require.NoError(t, err)
	assert.Equal(t, []domain.BoundingBox{{MinLat: 8.9, MaxLat: 9.4, MinLon: -79.9, MaxLon: -79.5}}, zones)

	_, err = ParseSlowZones("9.4,8.9,-79.9,-79.5")
	require.Error(t, err)

	_, err = ParseSlowZones("a,b,c,d")
	require.Error(t, err)
}
