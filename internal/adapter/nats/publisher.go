package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/couchcryptid/port-risk-service/internal/domain"
	"github.com/nats-io/nats.go"
)

// Publisher sends track points to NATS on "<prefix>.<vessel_id>.<voyage_id>".
// It implements pipeline.BatchLoader.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewPublisher connects to url and logs connection state changes.
func NewPublisher(url, prefix string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("port-risk-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Publisher{nc: nc, prefix: prefix, logger: logger}, nil
}

// LoadBatch publishes every point and flushes once so the batch is on the
// wire before returning.
func (p *Publisher) LoadBatch(ctx context.Context, points []domain.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}
	for i := range points {
		data, err := json.Marshal(points[i])
		if err != nil {
			return fmt.Errorf("serialize track point: %w", err)
		}
		if err := p.nc.Publish(subjectFor(p.prefix, points[i]), data); err != nil {
			return fmt.Errorf("publish track point: %w", err)
		}
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	p.logger.Debug("track points published", "prefix", p.prefix, "count", len(points))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	p.nc.Close()
	return err
}

func subjectFor(prefix string, p domain.TrackPoint) string {
	return fmt.Sprintf("%s.%s.%s", subjectToken(prefix), subjectToken(p.VesselID), strconv.Itoa(p.VoyageID))
}

// subjectToken makes s safe as a single NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
