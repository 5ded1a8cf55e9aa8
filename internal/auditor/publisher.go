// Package auditor implements the audit trail pipeline: pending outbox
// messages are published to Kafka, consumed through a worker pool, and
// archived in MongoDB.
package auditor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/btspay/transfer-ledger/internal/domain/outbox"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
	"github.com/btspay/transfer-ledger/internal/platform/messaging/producers"
)

// EventPublisher pushes outbox messages onto the journal topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	logger *slog.Logger,
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent validates the payload, publishes it keyed by account so
// per-account ordering survives partitioning, and marks the outbox row
// PROCESSED. A payload that fails validation is parked as
// FAILED_TO_PUBLISH instead of being retried forever.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Outbox payload failed validation, parking message",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after validation error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("invalid payload for outbox %d: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.AccountID.String(), event); err != nil {
		return fmt.Errorf("failed to publish journal event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
