// Command validate checks a trajectory fixture written by genroutes against
// the generator's guarantees: point counts per lane, positive speeds, halved
// endpoint speeds, non-decreasing timestamps, shared voyage IDs and, when
// -seed is given, reproducibility from the seed.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/trajectories_seed42.json -seed 42 -densify 3
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"reflect"
	"time"

	"github.com/couchcryptid/port-risk-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// vesselTrack is one vessel's points in fixture order.
type vesselTrack struct {
	id     string
	points []domain.TrackPoint
}

func main() {
	fixture := flag.String("fixture", "", "path to a trajectory set JSON fixture")
	densify := flag.Int("densify", 3, "densify value the fixture was generated with")
	seed := flag.Int64("seed", -1, "seed the fixture was generated with; -1 skips the reproducibility phase")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture, *densify, *seed); code != 0 {
		os.Exit(code)
	}
}

func run(path string, densify int, seed int64) int {
	fmt.Println("=== Trajectory Fixture Validation ===")
	fmt.Println()

	set, err := loadSet(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}
	tracks := groupByVessel(set.Points)

	phases := []*phase{
		validateCounts(tracks, densify),
		validateSpeeds(tracks),
		validateTimeline(tracks),
		validateRegistry(set, tracks),
	}
	if seed >= 0 {
		phases = append(phases, validateReproducible(set, uint64(seed), densify))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Points: %d across %d vessels\n", len(set.Points), len(tracks))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadSet(path string) (domain.TrajectorySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.TrajectorySet{}, err
	}
	var set domain.TrajectorySet
	if err := json.Unmarshal(data, &set); err != nil {
		return domain.TrajectorySet{}, err
	}
	return set, nil
}

func groupByVessel(points []domain.TrackPoint) []vesselTrack {
	index := map[string]int{}
	var tracks []vesselTrack
	for _, p := range points {
		i, ok := index[p.VesselID]
		if !ok {
			i = len(tracks)
			index[p.VesselID] = i
			tracks = append(tracks, vesselTrack{id: p.VesselID})
		}
		tracks[i].points = append(tracks[i].points, p)
	}
	return tracks
}

// ── Phases ──

func validateCounts(tracks []vesselTrack, densify int) *phase {
	p := &phase{name: "Point counts match lane length"}
	fmt.Println("Phase 1: point counts")
	routes := domain.DefaultRoutes()
	for _, t := range tracks {
		lane, ok := routes[t.points[0].RouteType]
		if !ok {
			p.errorf("%s: unknown route type %q", t.id, t.points[0].RouteType)
			continue
		}
		if want := domain.ExpectedPointCount(len(lane), densify); len(t.points) != want {
			p.errorf("%s: %d points, want %d for %d-port %s", t.id, len(t.points), want, len(lane), t.points[0].RouteType)
		}
		for i, pt := range t.points {
			if pt.Sequence != i || pt.Position != i+1 {
				p.errorf("%s: point %d has sequence=%d position=%d", t.id, i, pt.Sequence, pt.Position)
				break
			}
		}
	}
	return p
}

func validateSpeeds(tracks []vesselTrack) *phase {
	p := &phase{name: "Speeds positive, endpoints halved"}
	fmt.Println("Phase 2: speeds")
	for _, t := range tracks {
		for i, pt := range t.points {
			if pt.SpeedKnots <= 0 || math.IsNaN(pt.SpeedKnots) {
				p.errorf("%s: point %d speed %.3f", t.id, i, pt.SpeedKnots)
			}
		}
		if len(t.points) > 1 {
			first, last := t.points[0].SpeedKnots, t.points[len(t.points)-1].SpeedKnots
			if !floatEq(first, last) {
				p.errorf("%s: endpoint speeds differ: %.4f vs %.4f", t.id, first, last)
			}
		}
	}
	return p
}

func validateTimeline(tracks []vesselTrack) *phase {
	p := &phase{name: "Timestamps non-decreasing, voyage shared"}
	fmt.Println("Phase 3: timeline")
	for _, t := range tracks {
		voyage := t.points[0].VoyageID
		if !t.points[0].Timestamp.Equal(domain.DefaultRunStart) {
			p.errorf("%s: starts at %s, want run start", t.id, t.points[0].Timestamp.Format(domain.TimestampLayout))
		}
		for i := 1; i < len(t.points); i++ {
			if t.points[i].Timestamp.Before(t.points[i-1].Timestamp) {
				p.errorf("%s: timestamp decreases at point %d", t.id, i)
			}
			if t.points[i].VoyageID != voyage {
				p.errorf("%s: voyage changes at point %d", t.id, i)
			}
		}
		if voyage < 1000 || voyage > 9999 {
			p.errorf("%s: voyage %d outside 1000-9999", t.id, voyage)
		}
	}
	return p
}

func validateRegistry(set domain.TrajectorySet, tracks []vesselTrack) *phase {
	p := &phase{name: "Ports and vessel names present"}
	fmt.Println("Phase 4: registry")
	if len(set.Ports) == 0 {
		p.errorf("fixture has no ports")
	}
	for _, t := range tracks {
		if set.VesselNames[t.id] == "" {
			p.errorf("%s: missing vessel name", t.id)
		}
	}
	return p
}

func validateReproducible(set domain.TrajectorySet, seed uint64, densify int) *phase {
	p := &phase{name: "Regenerates identically from seed"}
	fmt.Println("Phase 5: reproducibility")
	opts := domain.DefaultGeneratorOptions(seed)
	opts.Densify = densify
	regen, err := domain.GenerateRoutes(domain.DefaultPorts(), domain.DefaultRoutes(), domain.DefaultVessels(), opts)
	if err != nil {
		p.errorf("regenerate: %v", err)
		return p
	}
	if len(regen.Points) != len(set.Points) {
		p.errorf("regenerated %d points, fixture has %d", len(regen.Points), len(set.Points))
		return p
	}
	for i := range regen.Points {
		// The fixture's timestamps are truncated to seconds on the wire.
		want := regen.Points[i]
		want.Timestamp = want.Timestamp.Truncate(time.Second)
		got := set.Points[i]
		if !reflect.DeepEqual(roundPoint(want), roundPoint(got)) {
			p.errorf("point %d differs: fixture %+v, regenerated %+v", i, got, want)
			if len(p.errors) >= 10 {
				break
			}
		}
	}
	return p
}

func roundPoint(pt domain.TrackPoint) domain.TrackPoint {
	pt.Lat = math.Round(pt.Lat*1e9) / 1e9
	pt.Lon = math.Round(pt.Lon*1e9) / 1e9
	pt.SpeedKnots = math.Round(pt.SpeedKnots*1e9) / 1e9
	pt.Timestamp = pt.Timestamp.UTC()
	return pt
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
