package risk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// trajectoryConcurrency bounds parallel point assessments along a trajectory.
const trajectoryConcurrency = 3

// Classifier asks for a qualitative port status.
type Classifier interface {
	ClassifyRisk(ctx context.Context, weather []domain.Forecast, news []domain.Article) (string, error)
}

// Service gathers weather and news for a coordinate and scores it.
type Service struct {
	weather    domain.WeatherFetcher
	news       domain.NewsFeed
	scorer     domain.RiskScorer
	classifier Classifier
	newsLimit  int
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewService creates a risk service. classifier may be nil, in which case
// status is only taken from the score reply when the model volunteers one.
func NewService(
	weather domain.WeatherFetcher,
	news domain.NewsFeed,
	scorer domain.RiskScorer,
	classifier Classifier,
	newsLimit int,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		weather:    weather,
		news:       news,
		scorer:     scorer,
		classifier: classifier,
		newsLimit:  newsLimit,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Assess fetches the forecast and recent news, then asks the model for a score
// and, when withStatus is set, a qualitative status. A news failure degrades to
// scoring on weather alone; a weather or model failure is returned.
func (s *Service) Assess(ctx context.Context, lat, lon float64, withStatus bool) (domain.RiskAssessment, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.RiskAssessment{}, err
	}

	forecasts, err := s.weather.FetchForecast(ctx, lat, lon)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("fetch weather: %w", err)
	}

	articles, err := s.news.LatestNews(ctx, s.newsLimit)
	if err != nil {
		s.logger.Warn("news unavailable, scoring on weather only", "error", err)
		articles = nil
	}

	raw, err := s.scorer.ScoreRisk(ctx, forecasts, articles)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	out := domain.RiskAssessment{
		Lat:        lat,
		Lon:        lon,
		Raw:        raw,
		AssessedAt: s.clock.Now().UTC(),
	}
	if score, ok := domain.ParseRiskScore(raw); ok {
		out.Score = &score
	} else {
		s.metrics.ParseFailures.WithLabelValues("risk_score").Inc()
		s.logger.Warn("unparseable risk score", "raw", raw)
	}
	if status, rationale, ok := domain.ParseRiskStatus(raw); ok {
		out.Status, out.Rationale = status, rationale
	}

	if withStatus && s.classifier != nil {
		text, err := s.classifier.ClassifyRisk(ctx, forecasts, articles)
		if err != nil {
			return domain.RiskAssessment{}, err
		}
		status, rationale, ok := domain.ParseRiskStatus(text)
		if ok {
			out.Status, out.Rationale = status, rationale
		} else {
			s.metrics.ParseFailures.WithLabelValues("risk_status").Inc()
			s.logger.Warn("unparseable risk status", "raw", text)
		}
	}

	s.logger.Info("risk assessed",
		"lat", lat,
		"lon", lon,
		"forecast_steps", len(forecasts),
		"news_items", len(articles),
		"status", string(out.Status),
	)
	return out, nil
}

// AssessTrajectory assesses every n-th point of a trajectory, starting with the
// first. Points are assessed concurrently; the first failure cancels the rest
// and is returned.
func (s *Service) AssessTrajectory(ctx context.Context, traj domain.Trajectory, every int, withStatus bool) (domain.TrajectoryRisk, error) {
	if every < 1 {
		return domain.TrajectoryRisk{}, fmt.Errorf("every must be at least 1: %w", domain.ErrInvalidInput)
	}

	indices := domain.SampleIndices(len(traj.Points), every)
	samples := make([]domain.TrajectoryRiskSample, len(indices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trajectoryConcurrency)
	for i, idx := range indices {
		p := traj.Points[idx]
		g.Go(func() error {
			a, err := s.Assess(gctx, p.Lat, p.Lon, withStatus)
			if err != nil {
				return fmt.Errorf("assess point %d: %w", p.Sequence, err)
			}
			samples[i] = domain.TrajectoryRiskSample{
				Sequence:       p.Sequence,
				Timestamp:      p.Timestamp,
				RiskAssessment: a,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.TrajectoryRisk{}, err
	}

	s.logger.Info("trajectory risk assessed",
		"vessel_id", traj.VesselID,
		"points", len(traj.Points),
		"samples", len(samples),
	)
	return domain.TrajectoryRisk{
		VesselID:  traj.VesselID,
		VoyageID:  traj.VoyageID,
		RouteType: traj.RouteType,
		Every:     every,
		Samples:   samples,
	}, nil
}
