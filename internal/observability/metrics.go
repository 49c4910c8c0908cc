package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Route generation metrics.
	RoutesGenerated      prometheus.Counter
	TrackPointsGenerated prometheus.Counter
	GenerationErrors     prometheus.Counter
	GenerationDuration   prometheus.Histogram

	// Upstream collaborator metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: service={openweather,perplexity,openai}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: service
	NewsCache        *prometheus.CounterVec   // labels: result={hit,miss}
	ParseFailures    *prometheus.CounterVec   // labels: kind={news_item,risk_score,risk_status}

	// Track publishing metrics.
	PointsPublished         prometheus.Counter
	PublishErrors           prometheus.Counter
	PublisherRunning        prometheus.Gauge
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RoutesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "routes_generated_total",
			Help:      "Total vessel trajectories generated.",
		}),
		TrackPointsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "track_points_generated_total",
			Help:      "Total track points generated across all trajectories.",
		}),
		GenerationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "generation_errors_total",
			Help:      "Total generation runs rejected by registry validation.",
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "port_risk",
			Name:      "generation_duration_seconds",
			Help:      "Duration of one trajectory set generation.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "upstream_requests_total",
			Help:      "External API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "port_risk",
			Name:      "upstream_duration_seconds",
			Help:      "External API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"service"}),
		NewsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "news_cache_total",
			Help:      "News cache lookups by result.",
		}, []string{"result"}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "llm_parse_failures_total",
			Help:      "Language-model outputs that did not match the expected format.",
		}, []string{"kind"}),
		PointsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "track_points_published_total",
			Help:      "Total track points written to the configured sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "port_risk",
			Name:      "publish_errors_total",
			Help:      "Total failed sink writes.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "port_risk",
			Name:      "publisher_running",
			Help:      "1 when the track publisher is active, 0 when shut down.",
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "port_risk",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete generate-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.RoutesGenerated,
		m.TrackPointsGenerated,
		m.GenerationErrors,
		m.GenerationDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.NewsCache,
		m.ParseFailures,
		m.PointsPublished,
		m.PublishErrors,
		m.PublisherRunning,
		m.BatchProcessingDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RoutesGenerated:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "port_risk", Name: "routes_generated_total"}),
		TrackPointsGenerated:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "port_risk", Name: "track_points_generated_total"}),
		GenerationErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "port_risk", Name: "generation_errors_total"}),
		GenerationDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "port_risk", Name: "generation_duration_seconds"}),
		UpstreamRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "port_risk", Name: "upstream_requests_total"}, []string{"service", "outcome"}),
		UpstreamDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "port_risk", Name: "upstream_duration_seconds"}, []string{"service"}),
		NewsCache:               prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "port_risk", Name: "news_cache_total"}, []string{"result"}),
		ParseFailures:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "port_risk", Name: "llm_parse_failures_total"}, []string{"kind"}),
		PointsPublished:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "port_risk", Name: "track_points_published_total"}),
		PublishErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "port_risk", Name: "publish_errors_total"}),
		PublisherRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "port_risk", Name: "publisher_running"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "port_risk", Name: "batch_processing_duration_seconds"}),
	}
}
