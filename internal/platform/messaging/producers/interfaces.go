package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher pushes journal events onto the journal topic. The key is
// the account ID so all events for one account land on the same partition
// and keep their order.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks journal events the auditor cannot process on the
// DLQ topic, preserving the original key and payload for later inspection.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter is the subset of kafka.Writer the journal event and DLQ
// producers need; tests substitute a mock here.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
