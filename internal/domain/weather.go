package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

const knotsPerMS = 1.943844

// Forecast is one forecast step for a coordinate.
type Forecast struct {
	Timestamp    time.Time `json:"timestamp"`
	Description  string    `json:"description"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	WindSpeedMS  float64   `json:"wind_speed"`
	VisibilityM  float64   `json:"visibility"`
}

// WindSpeedKnots converts the wind speed to knots.
func (f Forecast) WindSpeedKnots() float64 {
	return f.WindSpeedMS * knotsPerMS
}

// WeatherFetcher retrieves a forecast for a coordinate.
type WeatherFetcher interface {
	// FetchForecast returns an empty slice (and no error) when the provider
	// answers with a non-success status.
	FetchForecast(ctx context.Context, lat, lon float64) ([]Forecast, error)
}

// ValidateCoordinates rejects NaN and out-of-range WGS-84 values.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range: %w", lat, ErrInvalidInput)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range: %w", lon, ErrInvalidInput)
	}
	return nil
}
