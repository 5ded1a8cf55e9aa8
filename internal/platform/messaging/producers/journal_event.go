package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/btspay/transfer-ledger/internal/config"
)

// JournalEventProducer publishes journal events drained from the outbox to
// the journal topic. Ordering within an account is preserved by keying
// messages on the account ID.
type JournalEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewJournalEventProducer creates the outbox publisher and ensures the
// journal topic exists
func NewJournalEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*JournalEventProducer, error) {
	if cfg.JournalTopic == "" {
		return nil, fmt.Errorf("kafka journal topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for journal event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.JournalTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure journal topic %s exists: %w", cfg.JournalTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.JournalTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false, // Outbox poller needs the error to decide on retry
		WriteTimeout: cfg.MaxWait,
	}

	return &JournalEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.JournalTopic,
	}, nil
}

func (p *JournalEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal journal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish journal event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish journal event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published journal event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *JournalEventProducer) Close() error {
	p.logger.Info("Closing journal event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close journal event writer for topic %s: %w", p.topic, err)
	}
	return nil
}
