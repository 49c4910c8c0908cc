package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
)

// loadChunkSize bounds the number of points handed to the loader per call.
const loadChunkSize = 500

// Generator produces one trajectory set per call.
type Generator interface {
	Generate(ctx context.Context) (domain.TrajectorySet, error)
}

// BatchLoader writes multiple track points to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, points []domain.TrackPoint) error
}

// Pipeline orchestrates the periodic generate-publish loop.
type Pipeline struct {
	generator Generator
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	interval  time.Duration
}

// New creates a Pipeline that publishes a fresh trajectory set every interval.
func New(g Generator, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	return &Pipeline{
		generator: g,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one set,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("publisher has not published any track points yet")
	}
	return nil
}

// Ready reports whether at least one cycle has been published.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run executes the generate-publish loop until the context is cancelled.
// A configuration error stops the loop and is returned; sink errors are
// retried with backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "interval", p.interval)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		default:
		}

		err := p.runCycle(ctx)
		switch {
		case err == nil:
			backoff = 200 * time.Millisecond
			if !sleepWithContext(ctx, p.interval) {
				return nil
			}
		case ctx.Err() != nil:
			return nil
		case isConfigurationError(err):
			p.logger.Error("generation rejected, stopping publisher", "error", err)
			return err
		default:
			if !p.backoffOrStop(ctx, &backoff, maxBackoff) {
				return nil
			}
		}
	}
}

// runCycle generates one trajectory set and loads it in chunks.
func (p *Pipeline) runCycle(ctx context.Context) error {
	start := time.Now()

	set, err := p.generator.Generate(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(set.Points); i += loadChunkSize {
		end := min(i+loadChunkSize, len(set.Points))
		chunk := set.Points[i:end]
		if err := p.loader.LoadBatch(ctx, chunk); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Error("load batch failed", "error", err, "batch_size", len(chunk))
			return err
		}
		p.metrics.PointsPublished.Add(float64(len(chunk)))
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("trajectory set published",
		"vessels", len(set.Trajectories),
		"points", len(set.Points),
		"duration", time.Since(start),
	)
	return nil
}

// backoffOrStop sleeps with the current backoff and advances it.
// Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func isConfigurationError(err error) bool {
	var cfgErr *domain.ConfigurationError
	return errors.As(err, &cfgErr)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
