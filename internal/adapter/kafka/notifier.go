// Package kafka publishes dataset lifecycle notifications so downstream
// presentation caches can invalidate without polling.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/altiplano-labs/frost-risk-service/internal/config"
	"github.com/altiplano-labs/frost-risk-service/internal/store"
)

// Notifier produces reload events to a Kafka topic.
// It implements store.ReloadPublisher.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured reload topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Notifier{writer: w, logger: logger}
}

// PublishReload serializes and publishes one reload event. The caller treats
// failures as diagnostics; a lost notification only delays downstream cache
// refresh until the next poll.
func (n *Notifier) PublishReload(ctx context.Context, event store.ReloadEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish reload event: %w", err)
	}
	n.logger.Debug("reload event published", "topic", n.writer.Topic, "rows", event.Rows)
	return nil
}

// serializeToMessage marshals a reload event into a Kafka message.
func serializeToMessage(event store.ReloadEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reload event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Source),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "loaded_at", Value: []byte(event.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
