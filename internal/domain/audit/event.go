package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// Event is one immutable entry in the audit trail: a journal mutation
// (creation or resolution) captured at the moment it was committed. Events
// travel from the transactional outbox through Kafka into MongoDB.
type Event struct {
	EventID       uuid.UUID                `json:"event_id" bson:"event_id"`
	TransactionID uuid.UUID                `json:"transaction_id" bson:"transaction_id"`
	AccountID     uuid.UUID                `json:"account_id" bson:"account_id"`
	Kind          shared.TransactionKind   `json:"kind" bson:"kind"`
	Amount        int64                    `json:"amount" bson:"amount"` // Whole currency units
	Method        shared.PaymentMethod     `json:"method" bson:"method"`
	Counterparty  string                   `json:"counterparty,omitempty" bson:"counterparty,omitempty"`
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	Note          string                   `json:"note,omitempty" bson:"note,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at" bson:"occurred_at"`
}

// NewEvent snapshots the transaction's current state as an audit event
func NewEvent(txn *journal.Transaction, correlationID string) *Event {
	return &Event{
		EventID:       uuid.New(),
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Kind:          txn.Kind,
		Amount:        txn.Amount,
		Method:        txn.Method,
		Counterparty:  txn.Counterparty,
		Status:        txn.Status,
		Note:          txn.Note,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Validate rejects events whose decoded shape violates the journal schema.
// It runs at every storage boundary so malformed payloads surface as a
// corruption error instead of propagating.
func (e *Event) Validate() error {
	if e.EventID == uuid.Nil {
		return ErrCorruptEvent{Field: "event_id", Reason: "missing"}
	}
	if e.TransactionID == uuid.Nil {
		return ErrCorruptEvent{Field: "transaction_id", Reason: "missing"}
	}
	if e.AccountID == uuid.Nil {
		return ErrCorruptEvent{Field: "account_id", Reason: "missing"}
	}
	if !e.Kind.Valid() {
		return ErrCorruptEvent{Field: "kind", Reason: fmt.Sprintf("unknown value %q", e.Kind)}
	}
	if e.Amount <= 0 {
		return ErrCorruptEvent{Field: "amount", Reason: fmt.Sprintf("non-positive value %d", e.Amount)}
	}
	if !e.Method.Valid() {
		return ErrCorruptEvent{Field: "method", Reason: fmt.Sprintf("unknown value %q", e.Method)}
	}
	if !e.Status.Valid() {
		return ErrCorruptEvent{Field: "status", Reason: fmt.Sprintf("unknown value %q", e.Status)}
	}
	if e.OccurredAt.IsZero() {
		return ErrCorruptEvent{Field: "occurred_at", Reason: "missing"}
	}
	return nil
}

// ErrCorruptEvent indicates an event that failed schema validation when
// read back from a storage or messaging boundary
type ErrCorruptEvent struct {
	Field  string
	Reason string
}

func (e ErrCorruptEvent) Error() string {
	return fmt.Sprintf("corrupt audit event: field %s: %s", e.Field, e.Reason)
}
