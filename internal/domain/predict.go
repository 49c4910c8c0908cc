package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultCruiseSpeedKnots is the speed assumed when a prediction request
// names none.
const DefaultCruiseSpeedKnots = 15.5

// Waypoint is a bare coordinate on a predicted route.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RoutePrediction is a straight-line route between two points with its
// great-circle length and travel time.
type RoutePrediction struct {
	Route      [][2]float64 `json:"route"` // [lat, lon] pairs, start and end included
	DistanceNM float64      `json:"distance"`
	SpeedKnots float64      `json:"speed_knots"`
	ETAHours   float64      `json:"eta_hours"`
	ETA        string       `json:"eta"`
}

// PredictRoute interpolates k intermediate waypoints between start and end
// and derives the ETA from the haversine distance at the given speed.
func PredictRoute(start, end Waypoint, k int, speedKnots float64) (RoutePrediction, error) {
	if err := ValidateCoordinates(start.Lat, start.Lon); err != nil {
		return RoutePrediction{}, fmt.Errorf("start: %w", err)
	}
	if err := ValidateCoordinates(end.Lat, end.Lon); err != nil {
		return RoutePrediction{}, fmt.Errorf("end: %w", err)
	}
	if k < 0 {
		return RoutePrediction{}, fmt.Errorf("waypoints must not be negative: %w", ErrInvalidInput)
	}
	if math.IsNaN(speedKnots) || speedKnots <= 0 {
		return RoutePrediction{}, fmt.Errorf("speed %v must be positive: %w", speedKnots, ErrInvalidInput)
	}

	a := coord{lat: start.Lat, lon: start.Lon}
	b := coord{lat: end.Lat, lon: end.Lon}
	coords := densify([]coord{a, b}, k)

	route := make([][2]float64, len(coords))
	for i, c := range coords {
		route[i] = [2]float64{c.lat, c.lon}
	}

	distance := haversineNM(a, b)
	hours := distance / speedKnots
	return RoutePrediction{
		Route:      route,
		DistanceNM: distance,
		SpeedKnots: speedKnots,
		ETAHours:   hours,
		ETA:        formatETA(hours),
	}, nil
}

// formatETA renders hours as "2d 4h 30m", dropping leading zero units.
func formatETA(hours float64) string {
	d := time.Duration(math.Round(hours*60)) * time.Minute
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int((d - time.Duration(h)*time.Hour) / time.Minute)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, h, m)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
