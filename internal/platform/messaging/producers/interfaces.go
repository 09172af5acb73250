package producers

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/double-entry-ledger/internal/domain/shared"
)

// EventPublisher publishes transaction recorded events
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, event *shared.TransactionRecordedEvent) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
