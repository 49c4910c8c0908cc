package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/port-risk-service/internal/adapter/http"
	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockRoutes struct {
	seed    uint64
	densify int
	err     error
}

func (m *mockRoutes) GenerateWith(seed uint64, densify int) (domain.TrajectorySet, error) {
	m.seed, m.densify = seed, densify
	if m.err != nil {
		return domain.TrajectorySet{}, m.err
	}
	start := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	points := make([]domain.TrackPoint, 6)
	for i := range points {
		points[i] = domain.TrackPoint{
			Lat: 31.23 + float64(i), Lon: 121.47 + float64(i), Sequence: i, Position: i + 1, SpeedKnots: 9,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			VesselID:  "477123400", VoyageID: 4242, RouteType: "transpacific",
		}
	}
	return domain.TrajectorySet{
		Points: points,
		Trajectories: []domain.Trajectory{{
			VesselID: "477123400", RouteType: "transpacific", VoyageID: 4242, BaseSpeed: 18, Points: points,
		}},
		Ports:       domain.PortRegistry{"Shanghai": {Name: "Shanghai", Lat: 31.23, Lon: 121.47}},
		VesselNames: map[string]string{"477123400": "Orient Meridian"},
	}, nil
}

func (m *mockRoutes) DefaultSeed() uint64 { return 99 }
func (m *mockRoutes) DefaultDensify() int { return 3 }
func (m *mockRoutes) Ports() domain.PortRegistry {
	return domain.PortRegistry{"Rotterdam": {Name: "Rotterdam", Lat: 51.92, Lon: 4.48}}
}

type mockWeather struct {
	forecasts []domain.Forecast
	err       error
}

func (m *mockWeather) FetchForecast(_ context.Context, _, _ float64) ([]domain.Forecast, error) {
	return m.forecasts, m.err
}

type mockNews struct {
	limit int
	err   error
}

func (m *mockNews) LatestNews(_ context.Context, limit int) ([]domain.Article, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Article{{ID: "a1", Title: "Port congestion eases", Source: "Perplexity AI"}}, nil
}

type mockRisk struct {
	withStatus bool
	every      int
	traj       domain.Trajectory
	err        error
}

func (m *mockRisk) AssessTrajectory(_ context.Context, traj domain.Trajectory, every int, withStatus bool) (domain.TrajectoryRisk, error) {
	m.traj, m.every, m.withStatus = traj, every, withStatus
	if m.err != nil {
		return domain.TrajectoryRisk{}, m.err
	}
	score := 0.6
	out := domain.TrajectoryRisk{VesselID: traj.VesselID, VoyageID: traj.VoyageID, RouteType: traj.RouteType, Every: every}
	for _, i := range domain.SampleIndices(len(traj.Points), every) {
		p := traj.Points[i]
		out.Samples = append(out.Samples, domain.TrajectoryRiskSample{
			Sequence:       p.Sequence,
			Timestamp:      p.Timestamp,
			RiskAssessment: domain.RiskAssessment{Lat: p.Lat, Lon: p.Lon, Raw: "0.6", Score: &score},
		})
	}
	return out, nil
}

func (m *mockRisk) Assess(_ context.Context, lat, lon float64, withStatus bool) (domain.RiskAssessment, error) {
	m.withStatus = withStatus
	if m.err != nil {
		return domain.RiskAssessment{}, m.err
	}
	score := 0.4
	return domain.RiskAssessment{Lat: lat, Lon: lon, Raw: "0.4", Score: &score, Status: domain.StatusOperational}, nil
}

type fixture struct {
	routes  *mockRoutes
	weather *mockWeather
	news    *mockNews
	risk    *mockRisk
	srv     *httpadapter.Server
}

func newFixture(readyErr error, origins ...string) *fixture {
	f := &fixture{
		routes:  &mockRoutes{},
		weather: &mockWeather{forecasts: []domain.Forecast{{Description: "clear sky", WindSpeedMS: 3}}},
		news:    &mockNews{},
		risk:    &mockRisk{},
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	f.srv = httpadapter.NewServer(":0", httpadapter.Deps{
		Routes:      f.routes,
		Weather:     f.weather,
		News:        f.news,
		Risk:        f.risk,
		NewsLimit:   10,
		CORSOrigins: origins,
	}, &mockReadiness{err: readyErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

// --- health ---

func TestHealthzReturns200(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := newFixture(fmt.Errorf("not ready yet")).do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- routes & ports ---

func TestRoutes_Defaults(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, uint64(99), f.routes.seed)
	assert.Equal(t, 3, f.routes.densify)

	var body struct {
		Seed        uint64                 `json:"seed"`
		Densify     int                    `json:"densify"`
		Points      []map[string]any       `json:"points"`
		Ports       map[string]domain.Port `json:"ports"`
		VesselNames map[string]string      `json:"vessel_names"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(99), body.Seed)
	require.Len(t, body.Points, 6)
	assert.Equal(t, "2025-02-15T00:00:00", body.Points[0]["timestamp"])
	assert.Equal(t, "2025-02-15T01:00:00", body.Points[1]["timestamp"])
	assert.Equal(t, "Orient Meridian", body.VesselNames["477123400"])
	assert.Contains(t, body.Ports, "Shanghai")
}

func TestRoutes_QueryParams(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/routes?seed=12&densify=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(12), f.routes.seed)
	assert.Equal(t, 0, f.routes.densify)
}

func TestRoutes_InvalidParams(t *testing.T) {
	for _, target := range []string{"/api/routes?seed=-1", "/api/routes?densify=abc", "/api/routes?densify=500"} {
		rec := newFixture(nil).do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, decodeError(t, rec))
	}
}

func TestRoutes_ConfigurationErrorIs500(t *testing.T) {
	f := newFixture(nil)
	f.routes.err = &domain.ConfigurationError{Kind: "port", Name: "Atlantis", Reason: "unknown port"}

	rec := f.do(http.MethodGet, "/api/routes", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Atlantis")
}

func TestPorts_List(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/api/ports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ports map[string]domain.Port
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ports))
	assert.InDelta(t, 51.92, ports["Rotterdam"].Lat, 1e-9)
}

func TestPorts_SelectEchoes(t *testing.T) {
	rec := newFixture(nil).do(http.MethodPost, "/api/ports", `{"selectedPorts":[{"lat":1.29,"lon":103.85}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selectedPorts":[{"lat":1.29,"lon":103.85}]}`, rec.Body.String())
}

func TestPorts_SelectRejectsBadInput(t *testing.T) {
	f := newFixture(nil)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/ports", `{"selectedPorts":`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/ports", `{"selectedPorts":[{"lat":95,"lon":0}]}`).Code)
}

// --- weather, news, risk ---

func TestWeather(t *testing.T) {
	rec := newFixture(nil).do(http.MethodGet, "/api/weather?lat=51.92&lon=4.48", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var forecasts []domain.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecasts))
	require.Len(t, forecasts, 1)
	assert.Equal(t, "clear sky", forecasts[0].Description)
}

func TestWeather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"missing lat", "/api/weather?lon=4", nil, http.StatusBadRequest},
		{"out of range", "/api/weather?lat=10&lon=181", nil, http.StatusBadRequest},
		{"upstream down", "/api/weather?lat=10&lon=10", fmt.Errorf("forecast request: %w", domain.ErrUpstreamUnavailable), http.StatusBadGateway},
		{"malformed", "/api/weather?lat=10&lon=10", fmt.Errorf("decode: %w", domain.ErrMalformedUpstream), http.StatusBadGateway},
		{"unexpected", "/api/weather?lat=10&lon=10", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.weather.err = tt.err
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestNews_Limit(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/news", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, f.news.limit)

	rec = f.do(http.MethodGet, "/api/news?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, f.news.limit)

	var articles []domain.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	assert.Equal(t, "Port congestion eases", articles[0].Title)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/news?limit=0", "").Code)
}

func TestRisk(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/risk?lat=1.29&lon=103.85&status=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.risk.withStatus)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0.4", body["raw"])
	assert.InDelta(t, 0.4, body["score"], 1e-9)
	assert.Equal(t, "Operational", body["status"])
}

func TestRisk_UpstreamError(t *testing.T) {
	f := newFixture(nil)
	f.risk.err = fmt.Errorf("score risk: %w", domain.ErrUpstreamUnavailable)
	rec := f.do(http.MethodGet, "/api/risk?lat=1.29&lon=103.85", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, f.risk.withStatus)
}

func TestTrajectoryRisk(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/routes/477123400/risk?seed=7&densify=2&every=2&status=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, uint64(7), f.routes.seed)
	assert.Equal(t, 2, f.routes.densify)
	assert.Equal(t, 2, f.risk.every)
	assert.True(t, f.risk.withStatus)
	assert.Equal(t, "477123400", f.risk.traj.VesselID)

	var body struct {
		Seed     uint64 `json:"seed"`
		VesselID string `json:"vessel_id"`
		Every    int    `json:"every"`
		Samples  []struct {
			Sequence int     `json:"sequence"`
			Lat      float64 `json:"lat"`
			Score    float64 `json:"score"`
		} `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(7), body.Seed)
	assert.Equal(t, "477123400", body.VesselID)
	require.Len(t, body.Samples, 3)
	for i, seq := range []int{0, 2, 4} {
		assert.Equal(t, seq, body.Samples[i].Sequence)
		assert.InDelta(t, 31.23+float64(seq), body.Samples[i].Lat, 1e-9)
		assert.InDelta(t, 0.6, body.Samples[i].Score, 1e-9)
	}
}

func TestTrajectoryRisk_DefaultEvery(t *testing.T) {
	f := newFixture(nil)
	rec := f.do(http.MethodGet, "/api/routes/477123400/risk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.risk.every)
	assert.False(t, f.risk.withStatus)
}

func TestTrajectoryRisk_Errors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		riskErr error
		want    int
	}{
		{"unknown vessel", "/api/routes/000000000/risk", nil, http.StatusNotFound},
		{"zero every", "/api/routes/477123400/risk?every=0", nil, http.StatusBadRequest},
		{"bad every", "/api/routes/477123400/risk?every=x", nil, http.StatusBadRequest},
		{"bad seed", "/api/routes/477123400/risk?seed=-3", nil, http.StatusBadRequest},
		{"upstream down", "/api/routes/477123400/risk", fmt.Errorf("assess point 0: %w", domain.ErrUpstreamUnavailable), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.risk.err = tt.riskErr
			rec := f.do(http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

// --- route prediction ---

func TestPredictRoute(t *testing.T) {
	rec := newFixture(nil).do(http.MethodPost, "/api/predict_route",
		`{"start":{"lat":0,"lon":0},"end":{"lat":0,"lon":3},"speed_knots":10,"season":"summer"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.RoutePrediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Route, 4)
	assert.InDelta(t, 1, body.Route[1][1], 1e-9)
	assert.InDelta(t, 2, body.Route[2][1], 1e-9)
	assert.InDelta(t, 3, body.Route[3][1], 1e-9)
	assert.InDelta(t, 180.1, body.DistanceNM, 0.1)
	assert.InDelta(t, body.DistanceNM/10, body.ETAHours, 1e-9)
	assert.NotEmpty(t, body.ETA)
}

func TestPredictRoute_DefaultSpeed(t *testing.T) {
	rec := newFixture(nil).do(http.MethodPost, "/api/predict_route",
		`{"start":{"lat":51.92,"lon":4.48},"end":{"lat":40.68,"lon":-74.04}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.RoutePrediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, domain.DefaultCruiseSpeedKnots, body.SpeedKnots, 0)
	assert.Greater(t, body.DistanceNM, 3000.0)
}

func TestPredictRoute_BadInput(t *testing.T) {
	f := newFixture(nil)
	for _, body := range []string{
		`{"start":`,
		`{"start":{"lat":0,"lon":0}}`,
		`{"start":{"lat":95,"lon":0},"end":{"lat":0,"lon":3}}`,
		`{"start":{"lat":0,"lon":0},"end":{"lat":0,"lon":3},"speed_knots":-4}`,
	} {
		rec := f.do(http.MethodPost, "/api/predict_route", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

// --- CORS ---

func TestCORS_Wildcard(t *testing.T) {
	rec := newFixture(nil).do(http.MethodOptions, "/api/news", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowList(t *testing.T) {
	f := newFixture(nil, "http://localhost:3000")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ports", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ports", nil)
	req.Header.Set("Origin", "https://evil.example")
	f.srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
