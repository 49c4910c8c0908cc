// Command genroutes writes a synthetic trajectory set to a JSON fixture and
// can publish it once to the configured sink. It uses the same generator as
// the service, so fixtures match what the API and publisher produce.
//
// Usage:
//
//	go run ./cmd/genroutes -seed 42 -out data/mock/trajectories_seed42.json
//	SINK=kafka KAFKA_BROKERS=localhost:9092 go run ./cmd/genroutes -seed 42 -publish
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	kafkaadapter "github.com/couchcryptid/port-risk-service/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/port-risk-service/internal/adapter/nats"
	"github.com/couchcryptid/port-risk-service/internal/config"
	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/couchcryptid/port-risk-service/internal/observability"
	"github.com/couchcryptid/port-risk-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seed := flag.Uint64("seed", 42, "generator seed")
	densify := flag.Int("densify", 3, "points interpolated between each port pair")
	geodesic := flag.Bool("geodesic", false, "use great-circle distance for timestamps (also enabled by ROUTE_GEODESIC)")
	out := flag.String("out", "", "output path for the trajectory JSON fixture")
	publish := flag.Bool("publish", false, "publish the set once to the sink named by SINK")
	flag.Parse()

	if *out == "" && !*publish {
		flag.Usage()
		return fmt.Errorf("nothing to do: set -out and/or -publish")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	gen := pipeline.NewRouteGenerator(pipeline.GeneratorSettings{
		Densify:   *densify,
		SlowZones: cfg.SlowZones,
		Geodesic:  *geodesic || cfg.RouteGeodesic,
		Seed:      *seed,
		SeedSet:   true,
	}, clockwork.NewRealClock(), metrics, logger)

	set, err := gen.GenerateWith(*seed, *densify)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	log.Printf("generated %d trajectories, %d points (seed=%d, densify=%d)",
		len(set.Trajectories), len(set.Points), *seed, *densify)

	if *out != "" {
		if err := writeJSON(*out, set); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	if *publish {
		if err := publishOnce(cfg, set); err != nil {
			return err
		}
	}

	printStats(set)
	return nil
}

func publishOnce(cfg *config.Config, set domain.TrajectorySet) error {
	logger := observability.NewLogger(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Sink {
	case config.SinkKafka:
		w := kafkaadapter.NewWriter(cfg, logger)
		defer w.Close()
		if err := w.LoadBatch(ctx, set.Points); err != nil {
			return fmt.Errorf("publish to kafka: %w", err)
		}
		log.Printf("published %d points to kafka topic %s", len(set.Points), cfg.KafkaTrackTopic)
	case config.SinkNATS:
		pub, err := natsadapter.NewPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		if err := pub.LoadBatch(ctx, set.Points); err != nil {
			return fmt.Errorf("publish to nats: %w", err)
		}
		log.Printf("published %d points to nats prefix %s", len(set.Points), cfg.NATSSubjectPrefix)
	default:
		return fmt.Errorf("-publish requires SINK=kafka or SINK=nats, got %q", cfg.Sink)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func printStats(set domain.TrajectorySet) {
	byRoute := map[string]int{}
	for _, t := range set.Trajectories {
		byRoute[t.RouteType]++
	}
	routes := make([]string, 0, len(byRoute))
	for r := range byRoute {
		routes = append(routes, r)
	}
	sort.Strings(routes)

	fmt.Println("\nTrajectories by route type:")
	for _, r := range routes {
		fmt.Printf("  %-22s %d\n", r, byRoute[r])
	}

	fmt.Println("\nVessels:")
	for _, t := range set.Trajectories {
		last := t.Points[len(t.Points)-1]
		fmt.Printf("  %s %-20s voyage=%d base=%.1fkn points=%d arrives=%s\n",
			t.VesselID, set.VesselNames[t.VesselID], t.VoyageID, t.BaseSpeed, len(t.Points),
			last.Timestamp.Format(domain.TimestampLayout))
	}
}
