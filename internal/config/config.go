package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Sink names accepted by SINK.
const (
	SinkNone  = "none"
	SinkKafka = "kafka"
	SinkNATS  = "nats"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// OpenWeatherMap forecast configuration.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTimeout time.Duration

	// Perplexity news configuration.
	PerplexityAPIKey  string
	PerplexityBaseURL string
	NewsModel         string
	NewsCacheTTL      time.Duration
	NewsLimit         int

	// OpenAI risk-scoring configuration.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	RiskModel     string
	LLMTimeout    time.Duration

	// Route generator configuration.
	RouteDensify  int
	RouteSeed     uint64
	RouteSeedSet  bool
	RouteGeodesic bool
	SlowZones     []domain.BoundingBox

	// Track publishing configuration.
	Sink              string
	KafkaBrokers      []string
	KafkaTrackTopic   string
	NATSURL           string
	NATSSubjectPrefix string
	PublishInterval   time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	owTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	llmTimeout, err := parsePositiveDuration("LLM_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	newsTTL, err := parsePositiveDuration("NEWS_CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	publishInterval, err := parsePositiveDuration("PUBLISH_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	newsLimit, err := parseInt("NEWS_LIMIT", 10)
	if err != nil || newsLimit <= 0 {
		return nil, errors.New("invalid NEWS_LIMIT")
	}
	densify, err := parseInt("ROUTE_DENSIFY", 3)
	if err != nil || densify < 0 {
		return nil, errors.New("invalid ROUTE_DENSIFY")
	}

	var seed uint64
	seedSet := false
	if s := os.Getenv("ROUTE_SEED"); s != "" {
		seed, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid ROUTE_SEED")
		}
		seedSet = true
	}

	geodesic, err := strconv.ParseBool(sharedcfg.EnvOrDefault("ROUTE_GEODESIC", "false"))
	if err != nil {
		return nil, errors.New("invalid ROUTE_GEODESIC")
	}

	zones, err := ParseSlowZones(os.Getenv("SLOW_ZONES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherTimeout: owTimeout,

		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityBaseURL: sharedcfg.EnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		NewsModel:         sharedcfg.EnvOrDefault("NEWS_MODEL", "sonar-pro"),
		NewsCacheTTL:      newsTTL,
		NewsLimit:         newsLimit,

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: sharedcfg.EnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		RiskModel:     sharedcfg.EnvOrDefault("RISK_MODEL", "gpt-3.5-turbo"),
		LLMTimeout:    llmTimeout,

		RouteDensify:  densify,
		RouteSeed:     seed,
		RouteSeedSet:  seedSet,
		RouteGeodesic: geodesic,
		SlowZones:     zones,

		Sink:              strings.ToLower(sharedcfg.EnvOrDefault("SINK", SinkNone)),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTrackTopic:   sharedcfg.EnvOrDefault("KAFKA_TRACK_TOPIC", "vessel-track-points"),
		NATSURL:           sharedcfg.EnvOrDefault("NATS_URL", "nats://127.0.0.1:4222"),
		NATSSubjectPrefix: sharedcfg.EnvOrDefault("NATS_SUBJECT_PREFIX", "tracks"),
		PublishInterval:   publishInterval,
	}

	switch cfg.Sink {
	case SinkNone, SinkNATS:
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when SINK=kafka")
		}
		if cfg.KafkaTrackTopic == "" {
			return nil, errors.New("KAFKA_TRACK_TOPIC is required when SINK=kafka")
		}
	default:
		return nil, fmt.Errorf("invalid SINK %q: want none, kafka or nats", cfg.Sink)
	}

	return cfg, nil
}

// ParseSlowZones parses "latMin,latMax,lonMin,lonMax;..." into bounding boxes.
// An empty string yields the Suez Canal box; "none" disables slow zones.
func ParseSlowZones(s string) ([]domain.BoundingBox, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []domain.BoundingBox{domain.SuezCanal}, nil
	}
	if strings.EqualFold(s, "none") {
		return nil, nil
	}

	var zones []domain.BoundingBox
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid SLOW_ZONES entry %q: want latMin,latMax,lonMin,lonMax", part)
		}
		var v [4]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid SLOW_ZONES entry %q: %w", part, err)
			}
			v[i] = n
		}
		if v[0] > v[1] || v[2] > v[3] {
			return nil, fmt.Errorf("invalid SLOW_ZONES entry %q: min exceeds max", part)
		}
		zones = append(zones, domain.BoundingBox{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]})
	}
	return zones, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
