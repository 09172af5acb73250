package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/double-entry-ledger/internal/config"
	"github.com/double-entry-ledger/internal/domain/shared"
)

const eventTypeHeader = "event-type"

// EventProducer writes TransactionRecordedEvents keyed by transaction ID, so
// events for one transaction stay on one partition
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventProducer ensures the events topic exists and opens a writer for it
func NewEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write events asynchronously", "topic", cfg.EventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Wrote events asynchronously", "topic", cfg.EventsTopic, "count", len(messages))
			}
		},
	}

	return newEventProducer(logger, writer, cfg.EventsTopic), nil
}

func newEventProducer(logger *slog.Logger, writer KafkaWriter, topic string) *EventProducer {
	return &EventProducer{logger: logger, writer: writer, topic: topic}
}

var _ EventPublisher = (*EventProducer)(nil)

func (p *EventProducer) PublishTransactionRecorded(ctx context.Context, event *shared.TransactionRecordedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction recorded event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.TxnID),
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte("transaction.recorded")},
			{Key: "trace-id", Value: []byte(event.TraceID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transaction recorded event",
			"topic", p.topic,
			"txn_id", event.TxnID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transaction recorded event",
		"topic", p.topic,
		"txn_id", event.TxnID,
		"event_id", event.EventID,
	)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
