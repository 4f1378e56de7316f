// Package kafka publishes aligned occurrence records to a sink topic so
// downstream indexers can consume the archive as a feed.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dwc-align/internal/domain"
)

// Publisher produces one message per occurrence record.
// It implements pipeline.ArchiveSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

func (p *Publisher) Name() string { return "kafka" }

// Write serializes and publishes every occurrence in a single WriteMessages
// call.
func (p *Publisher) Write(ctx context.Context, a domain.Archive) error {
	if len(a.Occurrences) == 0 {
		return nil
	}

	msgs, err := buildMessages(a)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish occurrences: %w", err)
	}

	p.logger.Info("occurrences published", "topic", p.writer.Topic, "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessages marshals occurrence records into Kafka messages keyed by
// occurrenceID, with the owning eventID and archive build time as headers.
func buildMessages(a domain.Archive) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, len(a.Occurrences))
	for i, o := range a.Occurrences {
		data, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("serialize occurrence %s: %w", o.OccurrenceID, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(o.OccurrenceID),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "event_id", Value: []byte(o.EventID)},
				{Key: "built_at", Value: []byte(a.BuiltAt.Format(time.RFC3339))},
			},
		}
	}
	return msgs, nil
}
