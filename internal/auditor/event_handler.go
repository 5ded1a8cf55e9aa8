package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/btspay/transfer-ledger/internal/domain/audit"
	"github.com/btspay/transfer-ledger/internal/platform/messaging/producers"
)

// JournalEventHandler handles incoming journal events from Kafka
type JournalEventHandler struct {
	archivingService ArchivingService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewJournalEventHandler creates a new handler
func NewJournalEventHandler(
	logger *slog.Logger,
	archivingService ArchivingService,
	producer producers.DeadLetterPublisher,
) *JournalEventHandler {
	return &JournalEventHandler{
		archivingService: archivingService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes Kafka messages. Payloads that cannot be decoded
// or fail validation go to the DLQ so the consumer group keeps moving;
// transient archive failures are returned uncommitted for redelivery.
func (h *JournalEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event audit.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Errorf("failed to unmarshal journal event: %w", err))
	}
	if err := event.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received journal event for archiving",
		"event_id", event.EventID.String(),
		"transaction_id", event.TransactionID.String(),
		"status", string(event.Status),
	)

	if err := h.archivingService.ArchiveEvent(ctx, &event); err != nil {
		var corrupt audit.ErrCorruptEvent
		if errors.As(err, &corrupt) {
			return h.deadLetter(ctx, key, value, err)
		}
		logger.Error("Failed to archive journal event",
			"event_id", event.EventID.String(),
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully archived journal event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}

// deadLetter parks an unprocessable message on the DLQ. Committing the
// offset after a successful DLQ publish is what unblocks the partition.
func (h *JournalEventHandler) deadLetter(ctx context.Context, key []byte, value []byte, cause error) error {
	h.logger.Error("Unprocessable journal event",
		"error", cause,
		"message_key", string(key),
	)

	if h.producer == nil {
		return fmt.Errorf("unprocessable journal event and no DLQ configured: %w", cause)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to publish to DLQ: %w", dlqErr)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", cause.Error())
	return nil
}
