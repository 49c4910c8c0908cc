package domain

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

// earthRadiusNM is the mean Earth radius in nautical miles.
const earthRadiusNM = 3440.065

// GeneratorOptions tunes a GenerateRoutes run. Start from DefaultGeneratorOptions;
// the zero value is rejected.
type GeneratorOptions struct {
	Densify        int // k: interpolated points inserted between each port pair
	Profiles       map[Category]CategoryProfile
	SlowZones      []BoundingBox
	SlowZoneFactor float64 // speed multiplier inside a slow zone
	EndpointFactor float64 // speed multiplier at the first and last point
	SpeedVariation float64 // elsewhere speed is base * U[1-v, 1+v]
	StartTime      time.Time
	VoyageIDMin    int
	VoyageIDMax    int // inclusive

	// Geodesic switches the temporal offset from planar degree distance to
	// great-circle nautical miles.
	Geodesic bool

	// Rand is the source for every random draw. When nil a PCG source seeded
	// with Seed is used.
	Rand *rand.Rand
	Seed uint64
}

// DefaultRunStart is the fixed timestamp every trajectory starts from.
var DefaultRunStart = time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)

// DefaultGeneratorOptions returns the demo settings with the given seed.
func DefaultGeneratorOptions(seed uint64) GeneratorOptions {
	return GeneratorOptions{
		Densify:        3,
		Profiles:       DefaultProfiles(),
		SlowZones:      []BoundingBox{SuezCanal},
		SlowZoneFactor: 0.7,
		EndpointFactor: 0.5,
		SpeedVariation: 0.2,
		StartTime:      DefaultRunStart,
		VoyageIDMin:    1000,
		VoyageIDMax:    9999,
		Seed:           seed,
	}
}

// NewRand returns a deterministic PCG-backed source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ExpectedPointCount is the number of points a lane of n ports yields with k
// interpolated points per leg.
func ExpectedPointCount(n, k int) int {
	if n == 0 {
		return 0
	}
	return (n-1)*(k+1) + 1
}

// GenerateRoutes builds one synthetic trajectory per vessel. Every registry
// reference is validated before the first point is produced; on error the
// returned set is empty.
func GenerateRoutes(ports PortRegistry, routes RouteRegistry, vessels []Vessel, opts GeneratorOptions) (TrajectorySet, error) {
	if err := validateGeneration(ports, routes, vessels, opts); err != nil {
		return TrajectorySet{}, err
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewRand(opts.Seed)
	}

	set := TrajectorySet{
		Ports:        make(PortRegistry, len(ports)),
		VesselNames:  make(map[string]string, len(vessels)),
		Trajectories: make([]Trajectory, 0, len(vessels)),
	}
	for name, p := range ports {
		set.Ports[name] = p
	}

	for _, v := range vessels {
		traj := generateTrajectory(rng, ports, routes, v, opts)
		set.Trajectories = append(set.Trajectories, traj)
		set.Points = append(set.Points, traj.Points...)
		set.VesselNames[v.ID] = v.Name
	}
	return set, nil
}

func generateTrajectory(rng *rand.Rand, ports PortRegistry, routes RouteRegistry, v Vessel, opts GeneratorOptions) Trajectory {
	profile := opts.Profiles[v.Category]
	routeType := profile.RouteTypes[rng.IntN(len(profile.RouteTypes))]

	anchors := resolveRoute(ports, routes[routeType])
	coords := densify(anchors, opts.Densify)
	jitter(rng, coords, profile.Jitter)

	base := uniform(rng, profile.MinSpeed, profile.MaxSpeed)
	speeds := speedProfile(rng, coords, base, opts)
	voyageID := opts.VoyageIDMin + rng.IntN(opts.VoyageIDMax-opts.VoyageIDMin+1)

	points := make([]TrackPoint, len(coords))
	var hours float64
	for i, c := range coords {
		if i > 0 {
			hours += legHours(coords[i-1], c, speeds[i], opts.Geodesic)
		}
		points[i] = TrackPoint{
			Lat:        c.lat,
			Lon:        c.lon,
			Sequence:   i,
			Position:   i + 1,
			SpeedKnots: speeds[i],
			Timestamp:  opts.StartTime.Add(time.Duration(hours * float64(time.Hour))),
			VesselID:   v.ID,
			VoyageID:   voyageID,
			RouteType:  routeType,
		}
	}

	return Trajectory{
		VesselID:  v.ID,
		RouteType: routeType,
		VoyageID:  voyageID,
		BaseSpeed: base,
		Points:    points,
	}
}

type coord struct {
	lat, lon float64
}

func resolveRoute(ports PortRegistry, names []string) []coord {
	out := make([]coord, len(names))
	for i, name := range names {
		p := ports[name]
		out[i] = coord{lat: p.Lat, lon: p.Lon}
	}
	return out
}

// densify inserts k evenly spaced points between each consecutive anchor pair,
// at fractions j/(k+1) for j = 1..k.
func densify(anchors []coord, k int) []coord {
	out := make([]coord, 0, ExpectedPointCount(len(anchors), k))
	for i, a := range anchors {
		out = append(out, a)
		if i == len(anchors)-1 {
			break
		}
		b := anchors[i+1]
		for j := 1; j <= k; j++ {
			f := float64(j) / float64(k+1)
			out = append(out, coord{
				lat: a.lat + (b.lat-a.lat)*f,
				lon: a.lon + (b.lon-a.lon)*f,
			})
		}
	}
	return out
}

func jitter(rng *rand.Rand, coords []coord, s float64) {
	for i := range coords {
		coords[i].lat += uniform(rng, -s, s)
		coords[i].lon += uniform(rng, -s, s)
	}
}

func speedProfile(rng *rand.Rand, coords []coord, base float64, opts GeneratorOptions) []float64 {
	speeds := make([]float64, len(coords))
	last := len(coords) - 1
	for i, c := range coords {
		switch {
		case i == 0 || i == last:
			speeds[i] = base * opts.EndpointFactor
		case inSlowZone(opts.SlowZones, c):
			speeds[i] = base * opts.SlowZoneFactor
		default:
			speeds[i] = base * uniform(rng, 1-opts.SpeedVariation, 1+opts.SpeedVariation)
		}
	}
	return speeds
}

func inSlowZone(zones []BoundingBox, c coord) bool {
	for _, z := range zones {
		if z.Contains(c.lat, c.lon) {
			return true
		}
	}
	return false
}

func legHours(a, b coord, speed float64, geodesic bool) float64 {
	if geodesic {
		return haversineNM(a, b) / speed
	}
	return math.Hypot(b.lat-a.lat, b.lon-a.lon) * 60 / speed
}

func haversineNM(a, b coord) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.lon - a.lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// validateGeneration checks every registry reference and option up front so
// that generation never fails part-way.
func validateGeneration(ports PortRegistry, routes RouteRegistry, vessels []Vessel, opts GeneratorOptions) error {
	if len(ports) == 0 {
		return configErr("port", "", "registry is empty")
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	// Sorted so the reported error is stable across runs.
	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stops := routes[name]
		if len(stops) == 0 {
			return configErr("route", name, "has no ports")
		}
		for _, p := range stops {
			if _, ok := ports[p]; !ok {
				return configErr("port", p, "referenced by route "+name+" is not registered")
			}
		}
	}

	for _, v := range vessels {
		if v.ID == "" {
			return configErr("vessel", v.Name, "has no identifier")
		}
		profile, ok := opts.Profiles[v.Category]
		if !ok {
			return configErr("category", string(v.Category), "has no profile (vessel "+v.ID+")")
		}
		if len(profile.RouteTypes) == 0 {
			return configErr("category", string(v.Category), "has no eligible route types")
		}
		if profile.MinSpeed <= 0 || profile.MaxSpeed < profile.MinSpeed {
			return configErr("category", string(v.Category), "speed range must be positive and ordered")
		}
		if profile.Jitter < 0 {
			return configErr("category", string(v.Category), "jitter must not be negative")
		}
		for _, rt := range profile.RouteTypes {
			if _, ok := routes[rt]; !ok {
				return configErr("route", rt, "eligible for "+string(v.Category)+" is not registered")
			}
		}
	}
	return nil
}

func validateOptions(opts GeneratorOptions) error {
	switch {
	case opts.Densify < 0:
		return configErr("option", "Densify", "must not be negative")
	case opts.EndpointFactor <= 0:
		return configErr("option", "EndpointFactor", "must be positive")
	case opts.SlowZoneFactor <= 0:
		return configErr("option", "SlowZoneFactor", "must be positive")
	case opts.SpeedVariation < 0 || opts.SpeedVariation >= 1:
		return configErr("option", "SpeedVariation", "must be in [0, 1)")
	case opts.VoyageIDMin < 0 || opts.VoyageIDMax < opts.VoyageIDMin:
		return configErr("option", "VoyageIDMax", "voyage id range must be non-negative and ordered")
	}
	return nil
}
