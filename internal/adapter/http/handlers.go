package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	maxDensify   = 50
	maxNewsLimit = 50

	defaultRiskEvery = 5
	maxRiskSamples   = 25

	// predictWaypoints splits a predicted route into thirds.
	predictWaypoints = 2
)

type routesResponse struct {
	Seed    uint64 `json:"seed"`
	Densify int    `json:"densify"`
	domain.TrajectorySet
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	seed, densify, err := s.routeParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	set, err := s.deps.Routes.GenerateWith(seed, densify)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routesResponse{Seed: seed, Densify: densify, TrajectorySet: set})
}

// routeParams reads seed and densify, falling back to the generator defaults.
func (s *Server) routeParams(r *http.Request) (uint64, int, error) {
	q := r.URL.Query()

	seed := s.deps.Routes.DefaultSeed()
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("seed %q: %w", v, domain.ErrInvalidInput)
		}
		seed = n
	}

	densify := s.deps.Routes.DefaultDensify()
	if v := q.Get("densify"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxDensify {
			return 0, 0, fmt.Errorf("densify must be between 0 and %d: %w", maxDensify, domain.ErrInvalidInput)
		}
		densify = n
	}
	return seed, densify, nil
}

type trajectoryRiskResponse struct {
	Seed    uint64 `json:"seed"`
	Densify int    `json:"densify"`
	domain.TrajectoryRisk
}

// handleTrajectoryRisk regenerates the trajectory set and assesses every n-th
// point of one vessel's track.
func (s *Server) handleTrajectoryRisk(w http.ResponseWriter, r *http.Request) {
	seed, densify, err := s.routeParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	every := defaultRiskEvery
	if v := r.URL.Query().Get("every"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, fmt.Errorf("every must be a positive integer: %w", domain.ErrInvalidInput))
			return
		}
		every = n
	}
	withStatus, _ := strconv.ParseBool(r.URL.Query().Get("status"))

	set, err := s.deps.Routes.GenerateWith(seed, densify)
	if err != nil {
		s.writeError(w, err)
		return
	}
	vessel := chi.URLParam(r, "vessel")
	traj, ok := findTrajectory(set, vessel)
	if !ok {
		s.writeError(w, fmt.Errorf("vessel %q: %w", vessel, domain.ErrNotFound))
		return
	}
	if n := len(domain.SampleIndices(len(traj.Points), every)); n > maxRiskSamples {
		s.writeError(w, fmt.Errorf("every=%d yields %d samples, max %d: %w", every, n, maxRiskSamples, domain.ErrInvalidInput))
		return
	}

	result, err := s.deps.Risk.AssessTrajectory(r.Context(), traj, every, withStatus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trajectoryRiskResponse{Seed: seed, Densify: densify, TrajectoryRisk: result})
}

func findTrajectory(set domain.TrajectorySet, vesselID string) (domain.Trajectory, bool) {
	for _, t := range set.Trajectories {
		if t.VesselID == vesselID {
			return t, true
		}
	}
	return domain.Trajectory{}, false
}

type predictRouteRequest struct {
	Start      *domain.Waypoint `json:"start"`
	End        *domain.Waypoint `json:"end"`
	SpeedKnots float64          `json:"speed_knots,omitempty"`
}

// handlePredictRoute returns a straight-line route split into thirds, its
// great-circle distance and the ETA at the requested (or default) speed.
func (s *Server) handlePredictRoute(w http.ResponseWriter, r *http.Request) {
	var req predictRouteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("decode body: %w: %w", domain.ErrInvalidInput, err))
		return
	}
	if req.Start == nil || req.End == nil {
		s.writeError(w, fmt.Errorf("start and end are required: %w", domain.ErrInvalidInput))
		return
	}
	speed := req.SpeedKnots
	if speed == 0 {
		speed = domain.DefaultCruiseSpeedKnots
	}

	prediction, err := domain.PredictRoute(*req.Start, *req.End, predictWaypoints, speed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handlePorts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Routes.Ports())
}

type selectedPort struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

type selectPortsRequest struct {
	SelectedPorts []selectedPort `json:"selectedPorts"`
}

// handleSelectPorts validates and echoes the ports a client selected on the map.
func (s *Server) handleSelectPorts(w http.ResponseWriter, r *http.Request) {
	var req selectPortsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("decode body: %w: %w", domain.ErrInvalidInput, err))
		return
	}
	if req.SelectedPorts == nil {
		req.SelectedPorts = []selectedPort{}
	}
	for _, p := range req.SelectedPorts {
		if err := domain.ValidateCoordinates(p.Lat, p.Lon); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.logger.Info("ports selected", "count", len(req.SelectedPorts))
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	forecasts, err := s.deps.Weather.FetchForecast(r.Context(), lat, lon)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecasts)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := s.deps.NewsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxNewsLimit {
			s.writeError(w, fmt.Errorf("limit must be between 1 and %d: %w", maxNewsLimit, domain.ErrInvalidInput))
			return
		}
		limit = n
	}
	articles, err := s.deps.News.LatestNews(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := parseCoordinates(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	withStatus, _ := strconv.ParseBool(r.URL.Query().Get("status"))

	assessment, err := s.deps.Risk.Assess(r.Context(), lat, lon, withStatus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func parseCoordinates(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lat %q: %w", q.Get("lat"), domain.ErrInvalidInput)
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("lon %q: %w", q.Get("lon"), domain.ErrInvalidInput)
	}
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
