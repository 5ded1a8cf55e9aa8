package auditor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/btspay/transfer-ledger/internal/domain/audit"
)

// ArchivingService stores consumed journal events in the audit trail
type ArchivingService interface {
	// ArchiveEvent persists the event. Redelivered events are absorbed
	// silently so consumption stays idempotent.
	ArchiveEvent(ctx context.Context, event *audit.Event) error
}

// ArchivingServiceImpl implements ArchivingService over the audit repository
type ArchivingServiceImpl struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

// NewArchivingService creates a new archiving service
func NewArchivingService(logger *slog.Logger, auditRepo audit.Repository) ArchivingService {
	return &ArchivingServiceImpl{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ArchiveEvent validates and archives the event. A duplicate event ID means
// the message was already processed; the offset can be committed.
func (s *ArchivingServiceImpl) ArchiveEvent(ctx context.Context, event *audit.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if err := s.auditRepo.Archive(ctx, event); err != nil {
		var duplicate audit.ErrDuplicateEvent
		if errors.As(err, &duplicate) {
			s.logger.Info("Audit event already archived, skipping",
				"event_id", event.EventID.String(),
				"transaction_id", event.TransactionID.String(),
			)
			return nil
		}
		return err
	}

	s.logger.Info("Audit event archived",
		"event_id", event.EventID.String(),
		"transaction_id", event.TransactionID.String(),
		"status", string(event.Status),
	)
	return nil
}
