package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines audit trail persistence operations
type Repository interface {
	// Archive stores an event; archiving the same event ID twice is a no-op
	// error (ErrDuplicateEvent) so redelivered messages stay idempotent
	Archive(ctx context.Context, event *Event) error

	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*Event, error)

	// GetByTimeRange returns events newest first within [from, to]
	GetByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*Event, error)
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)
}

// ErrDuplicateEvent indicates the event was already archived
type ErrDuplicateEvent struct {
	EventID uuid.UUID
}

func (e ErrDuplicateEvent) Error() string {
	return "audit event already archived: " + e.EventID.String()
}

// ErrEventNotFound indicates no archived events matched the query
type ErrEventNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "no audit events for transaction: " + e.TransactionID.String()
}
