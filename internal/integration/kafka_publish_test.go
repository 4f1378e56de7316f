//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/dwc-align/internal/adapter/kafka"
	"github.com/couchcryptid/dwc-align/internal/domain"
)

const testFeedTopic = "test-aligned-occurrences"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka in a container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublisherRoundTrip publishes an archive's occurrences through the
// Kafka sink and reads them back, verifying keys, headers, and payload.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedTopic)

	builtAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	archive := domain.Archive{
		Occurrences: []domain.OccurrenceRecord{
			{
				ScientificName:   "Acropora cervicornis",
				EventID:          "St. John_250_1",
				OccurrenceID:     "occ-1",
				OccurrenceStatus: "absent",
				AcceptedID:       "206989",
				ScientificNameID: "urn:lsid:marinespecies.org:taxname:206989",
				Kingdom:          "Animalia",
			},
			{
				ScientificName:   "Madracis auretenra",
				EventID:          "St. John_250_1",
				OccurrenceID:     "occ-2",
				OccurrenceStatus: "present",
			},
		},
		BuiltAt: builtAt,
	}

	publisher := kafka.NewPublisher([]string{broker}, testFeedTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.Write(ctx, archive))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testFeedTopic,
		GroupID:     fmt.Sprintf("test-feed-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for i, want := range archive.Occurrences {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read occurrence %d from feed", i)

		assert.Equal(t, want.OccurrenceID, string(msg.Key))

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, want.EventID, headers["event_id"])
		assert.Equal(t, builtAt.Format(time.RFC3339), headers["built_at"])

		var got domain.OccurrenceRecord
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, want, got)
	}
}

// TestPublisherEmptyArchive verifies an empty archive produces no messages.
func TestPublisherEmptyArchive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedTopic)

	publisher := kafka.NewPublisher([]string{broker}, testFeedTopic, discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.Write(ctx, domain.Archive{}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testFeedTopic,
		GroupID:     fmt.Sprintf("test-empty-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no messages on feed topic")
}
