package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/port-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/port-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/port-risk-service/internal/adapter/llm"
	natsadapter "github.com/couchcryptid/port-risk-service/internal/adapter/nats"
	"github.com/couchcryptid/port-risk-service/internal/adapter/news"
	"github.com/couchcryptid/port-risk-service/internal/adapter/openweather"
	"github.com/couchcryptid/port-risk-service/internal/adapter/risk"
	"github.com/couchcryptid/port-risk-service/internal/config"
	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/couchcryptid/port-risk-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

// sink is a track-point loader that owns a connection.
type sink interface {
	pipeline.BatchLoader
	Close() error
}

// alwaysReady reports ready when no publisher is configured.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Route generator, shared by the HTTP API and the publisher.
	generator := pipeline.NewRouteGenerator(pipeline.GeneratorSettings{
		Densify:   cfg.RouteDensify,
		SlowZones: cfg.SlowZones,
		Geodesic:  cfg.RouteGeodesic,
		Seed:      cfg.RouteSeed,
		SeedSet:   cfg.RouteSeedSet,
	}, clock, metrics, logger)

	// External collaborators.
	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.OpenWeatherTimeout, metrics, logger)

	perplexity := llm.NewClient("perplexity", cfg.PerplexityAPIKey, cfg.PerplexityBaseURL, cfg.LLMTimeout, metrics, logger)
	agent := news.NewAgent(perplexity, cfg.NewsModel, metrics, logger)
	feed := news.NewCache(news.NewAggregator(agent, nil, logger), cfg.NewsCacheTTL, clock, metrics)

	openai := llm.NewClient("openai", cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMTimeout, metrics, logger)
	scorer := risk.NewScorer(openai, cfg.RiskModel)
	assessor := risk.NewService(weather, feed, scorer, scorer, cfg.NewsLimit, clock, metrics, logger)

	for name, key := range map[string]string{
		"OPENWEATHER_API_KEY": cfg.OpenWeatherAPIKey,
		"PERPLEXITY_API_KEY":  cfg.PerplexityAPIKey,
		"OPENAI_API_KEY":      cfg.OpenAIAPIKey,
	} {
		if key == "" {
			logger.Warn("api key not set, dependent endpoints will fail", "key", name)
		}
	}

	// Optional track publisher.
	var (
		out   sink
		p     *pipeline.Pipeline
		ready sharedobs.ReadinessChecker = alwaysReady{}
	)
	switch cfg.Sink {
	case config.SinkKafka:
		out = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTrackTopic, "brokers", cfg.KafkaBrokers)
	case config.SinkNATS:
		pub, err := natsadapter.NewPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
		if err != nil {
			logger.Error("failed to connect nats", "error", err)
			os.Exit(1)
		}
		out = pub
		logger.Info("nats sink enabled", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
	default:
		logger.Info("track publishing disabled")
	}
	if out != nil {
		p = pipeline.New(generator, out, logger, metrics, cfg.PublishInterval)
		ready = p
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Routes:      generator,
		Weather:     weather,
		News:        feed,
		Risk:        assessor,
		NewsLimit:   cfg.NewsLimit,
		CORSOrigins: cfg.CORSOrigins,
	}, ready, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start track publisher.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if out != nil {
		if err := out.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
