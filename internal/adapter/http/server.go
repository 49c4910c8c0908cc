package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteService generates synthetic trajectories and exposes the port registry.
type RouteService interface {
	GenerateWith(seed uint64, densify int) (domain.TrajectorySet, error)
	DefaultSeed() uint64
	DefaultDensify() int
	Ports() domain.PortRegistry
}

// RiskAssessor scores a coordinate, or sampled points of a trajectory, from
// weather and news.
type RiskAssessor interface {
	Assess(ctx context.Context, lat, lon float64, withStatus bool) (domain.RiskAssessment, error)
	AssessTrajectory(ctx context.Context, traj domain.Trajectory, every int, withStatus bool) (domain.TrajectoryRisk, error)
}

// Deps are the collaborators behind the JSON API.
type Deps struct {
	Routes      RouteService
	Weather     domain.WeatherFetcher
	News        domain.NewsFeed
	Risk        RiskAssessor
	NewsLimit   int
	CORSOrigins []string
}

// Server exposes health, readiness, metrics and the JSON API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api routes.
func NewServer(addr string, deps Deps, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Risk scoring chains weather, news and a model call.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(deps.CORSOrigins))

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/routes", s.handleRoutes)
		r.Get("/routes/{vessel}/risk", s.handleTrajectoryRisk)
		r.Post("/predict_route", s.handlePredictRoute)
		r.Get("/ports", s.handlePorts)
		r.Post("/ports", s.handleSelectPorts)
		r.Get("/weather", s.handleWeather)
		r.Get("/news", s.handleNews)
		r.Get("/risk", s.handleRisk)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// corsMiddleware allows the configured origins. "*" allows any origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
