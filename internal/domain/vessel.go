package domain

import (
	"encoding/json"
	"time"
)

// Port is a named harbour location (WGS-84 degrees).
type Port struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// PortRegistry maps a port name to its coordinates.
type PortRegistry map[string]Port

// RouteRegistry maps a lane name (route type) to its ordered port names.
// A lane may visit the same port twice, e.g. a loop back to origin.
type RouteRegistry map[string][]string

// Category is the closed set of vessel classes the generator understands.
type Category string

const (
	CategoryContainer Category = "container"
	CategoryTanker    Category = "tanker"
	CategoryBulk      Category = "bulk"
	CategoryCoastal   Category = "coastal"
)

// Vessel is a simulated ship. ID is a nine-digit MMSI.
type Vessel struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// CategoryProfile controls which lanes a category may sail and how it moves.
type CategoryProfile struct {
	RouteTypes []string // eligible lanes, drawn uniformly
	MinSpeed   float64  // knots
	MaxSpeed   float64  // knots
	Jitter     float64  // half-width of the uniform coordinate noise, degrees
}

// BoundingBox is an axis-aligned lat/lon rectangle, inclusive on all edges.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the coordinate lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// TimestampLayout is the wire format of TrackPoint timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// TrackPoint is one generated position of one vessel.
type TrackPoint struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Sequence   int       `json:"sequence"` // 0-based index along the trajectory
	Position   int       `json:"position"` // 1-based
	SpeedKnots float64   `json:"speed_knots"`
	Timestamp  time.Time `json:"-"`
	VesselID   string    `json:"vessel_id"`
	VoyageID   int       `json:"voyage_id"`
	RouteType  string    `json:"route_type"`
}

type trackPointJSON struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Sequence   int     `json:"sequence"`
	Position   int     `json:"position"`
	SpeedKnots float64 `json:"speed_knots"`
	Timestamp  string  `json:"timestamp"`
	VesselID   string  `json:"vessel_id"`
	VoyageID   int     `json:"voyage_id"`
	RouteType  string  `json:"route_type"`
}

// MarshalJSON renders the timestamp in TimestampLayout.
func (p TrackPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackPointJSON{
		Lat:        p.Lat,
		Lon:        p.Lon,
		Sequence:   p.Sequence,
		Position:   p.Position,
		SpeedKnots: p.SpeedKnots,
		Timestamp:  p.Timestamp.UTC().Format(TimestampLayout),
		VesselID:   p.VesselID,
		VoyageID:   p.VoyageID,
		RouteType:  p.RouteType,
	})
}

// UnmarshalJSON parses a point written by MarshalJSON.
func (p *TrackPoint) UnmarshalJSON(data []byte) error {
	var raw trackPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimestampLayout, raw.Timestamp, time.UTC)
	if err != nil {
		return err
	}
	*p = TrackPoint{
		Lat:        raw.Lat,
		Lon:        raw.Lon,
		Sequence:   raw.Sequence,
		Position:   raw.Position,
		SpeedKnots: raw.SpeedKnots,
		Timestamp:  ts,
		VesselID:   raw.VesselID,
		VoyageID:   raw.VoyageID,
		RouteType:  raw.RouteType,
	}
	return nil
}

// Trajectory is one vessel's generated track.
type Trajectory struct {
	VesselID  string       `json:"vessel_id"`
	RouteType string       `json:"route_type"`
	VoyageID  int          `json:"voyage_id"`
	BaseSpeed float64      `json:"base_speed_knots"`
	Points    []TrackPoint `json:"points"`
}

// TrajectorySet is the output of one generation run.
type TrajectorySet struct {
	Points       []TrackPoint      `json:"points"`
	Trajectories []Trajectory      `json:"-"`
	Ports        PortRegistry      `json:"ports"`
	VesselNames  map[string]string `json:"vessel_names"`
}
