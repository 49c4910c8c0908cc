package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
)

const (
	service      = "openweather"
	dtTextLayout = "2006-01-02 15:04:05"
)

// Client implements domain.WeatherFetcher using the OpenWeatherMap 5 day / 3 hour forecast API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap forecast client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchForecast returns the forecast steps for a coordinate in metric units.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) ([]domain.Forecast, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 4, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	fullURL := c.baseURL + "/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("forecast request: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(service, "empty").Inc()
		c.logger.Warn("forecast request rejected",
			"status", resp.StatusCode,
			"body", string(body),
			"lat", lat,
			"lon", lon,
		)
		return []domain.Forecast{}, nil
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("decode forecast: %w: %w", domain.ErrMalformedUpstream, err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(service, "success").Inc()

	forecasts := make([]domain.Forecast, 0, len(owResp.List))
	for _, item := range owResp.List {
		forecasts = append(forecasts, item.toDomain())
	}
	return forecasts, nil
}

// OpenWeatherMap API response types.

type response struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	Dt      int64  `json:"dt"`
	DtText  string `json:"dt_txt"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
}

func (f forecastItem) toDomain() domain.Forecast {
	out := domain.Forecast{
		TemperatureC: f.Main.Temp,
		HumidityPct:  f.Main.Humidity,
		WindSpeedMS:  f.Wind.Speed,
		VisibilityM:  f.Visibility,
	}
	if len(f.Weather) > 0 {
		out.Description = f.Weather[0].Description
	}
	if ts, err := time.Parse(dtTextLayout, f.DtText); err == nil {
		out.Timestamp = ts.UTC()
	} else if f.Dt > 0 {
		out.Timestamp = time.Unix(f.Dt, 0).UTC()
	}
	return out
}
