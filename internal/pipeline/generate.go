package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// RouteGenerator implements Generator over the default port, lane and vessel
// registries.
type RouteGenerator struct {
	ports     domain.PortRegistry
	routes    domain.RouteRegistry
	vessels   []domain.Vessel
	densify   int
	slowZones []domain.BoundingBox
	geodesic  bool

	seed    uint64
	seedSet bool
	cycle   atomic.Uint64

	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// GeneratorSettings are the tunables read from configuration.
type GeneratorSettings struct {
	Densify   int
	SlowZones []domain.BoundingBox
	Geodesic  bool
	// Seed is used when SeedSet is true; otherwise each run seeds from the clock.
	Seed    uint64
	SeedSet bool
}

// NewRouteGenerator creates a generator over the default registries.
func NewRouteGenerator(s GeneratorSettings, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *RouteGenerator {
	return &RouteGenerator{
		ports:     domain.DefaultPorts(),
		routes:    domain.DefaultRoutes(),
		vessels:   domain.DefaultVessels(),
		densify:   s.Densify,
		slowZones: s.SlowZones,
		geodesic:  s.Geodesic,
		seed:      s.Seed,
		seedSet:   s.SeedSet,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Ports returns a copy of the port registry the generator routes over.
func (g *RouteGenerator) Ports() domain.PortRegistry {
	out := make(domain.PortRegistry, len(g.ports))
	for k, v := range g.ports {
		out[k] = v
	}
	return out
}

// DefaultSeed returns the configured seed, or a clock-derived one when none is set.
func (g *RouteGenerator) DefaultSeed() uint64 {
	if g.seedSet {
		return g.seed
	}
	return uint64(g.clock.Now().UnixNano())
}

// DefaultDensify returns the configured interpolation count.
func (g *RouteGenerator) DefaultDensify() int {
	return g.densify
}

// Generate runs one publisher cycle. With a configured seed, cycle n uses
// seed+n so a restart replays the same sequence of trajectory sets.
func (g *RouteGenerator) Generate(_ context.Context) (domain.TrajectorySet, error) {
	n := g.cycle.Add(1) - 1
	seed := g.DefaultSeed()
	if g.seedSet {
		seed += n
	}
	return g.GenerateWith(seed, g.densify)
}

// GenerateWith runs the generator with an explicit seed and interpolation count.
func (g *RouteGenerator) GenerateWith(seed uint64, densify int) (domain.TrajectorySet, error) {
	start := time.Now()

	opts := domain.DefaultGeneratorOptions(seed)
	opts.Densify = densify
	opts.SlowZones = g.slowZones
	opts.Geodesic = g.geodesic

	set, err := domain.GenerateRoutes(g.ports, g.routes, g.vessels, opts)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			g.metrics.GenerationErrors.Inc()
		}
		return domain.TrajectorySet{}, err
	}

	g.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	g.metrics.RoutesGenerated.Add(float64(len(set.Trajectories)))
	g.metrics.TrackPointsGenerated.Add(float64(len(set.Points)))
	g.logger.Debug("trajectories generated",
		"seed", seed,
		"densify", densify,
		"vessels", len(set.Trajectories),
		"points", len(set.Points),
	)
	return set, nil
}
