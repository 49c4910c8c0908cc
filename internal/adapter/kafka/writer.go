package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/port-risk-service/internal/config"
	"github.com/couchcryptid/port-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces track points to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured track topic.
// Points are hashed by vessel ID so one vessel's track stays ordered on one partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTrackTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes track points in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, points []domain.TrackPoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write track points: %w", err)
	}
	w.logger.Debug("track points written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TrackPoint into a Kafka message keyed by vessel ID.
func serializeToMessage(p domain.TrackPoint) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize track point: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.VesselID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "vessel_id", Value: []byte(p.VesselID)},
			{Key: "voyage_id", Value: []byte(strconv.Itoa(p.VoyageID))},
			{Key: "route_type", Value: []byte(p.RouteType)},
		},
	}, nil
}
