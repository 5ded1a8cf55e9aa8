package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidKind            = errors.New("unknown transaction kind")
	ErrInvalidMethod          = errors.New("unknown payment method")
	ErrMissingCounterparty    = errors.New("transfer requires a counterparty")
	ErrUnexpectedCounterparty = errors.New("deposit cannot carry a counterparty")
	ErrInvalidOutcome         = errors.New("resolve outcome must be COMPLETED or REJECTED")
)

// Transaction is a journal record. The status transitions one way only:
// a TRANSFER starts PENDING and ends COMPLETED or REJECTED; a DEPOSIT is
// born COMPLETED and never transitions.
type Transaction struct {
	ID           uuid.UUID                `json:"id"`
	AccountID    uuid.UUID                `json:"account_id"`
	Kind         shared.TransactionKind   `json:"kind"`
	Amount       int64                    `json:"amount"` // Whole currency units
	Method       shared.PaymentMethod     `json:"method"`
	Counterparty string                   `json:"counterparty,omitempty"`
	Status       shared.TransactionStatus `json:"status"`
	Note         string                   `json:"note,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	ResolvedAt   *time.Time               `json:"resolved_at,omitempty"`
}

// NewTransaction validates the request fields and builds the journal record
// in its creation status: PENDING for a transfer (funds are held at request
// time), COMPLETED for a deposit (the payment channel confirmation is taken
// as synchronous and final).
func NewTransaction(accountID uuid.UUID, kind shared.TransactionKind, amount int64, method shared.PaymentMethod, counterparty string) (*Transaction, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}
	if kind == shared.TransactionKindTransfer && counterparty == "" {
		return nil, ErrMissingCounterparty
	}
	if kind == shared.TransactionKindDeposit && counterparty != "" {
		return nil, ErrUnexpectedCounterparty
	}

	now := time.Now()
	txn := &Transaction{
		ID:           uuid.New(),
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		Method:       method,
		Counterparty: counterparty,
		Status:       shared.TransactionStatusPending,
		CreatedAt:    now,
	}

	if kind == shared.TransactionKindDeposit {
		txn.Status = shared.TransactionStatusCompleted
		txn.ResolvedAt = &now
	}

	return txn, nil
}

// Resolve moves a PENDING transaction into a terminal status and attaches
// the optional note. Any call on a non-PENDING transaction fails, which is
// what makes refunds single-shot: a second rejection cannot happen.
func (t *Transaction) Resolve(outcome shared.TransactionStatus, note string) error {
	if outcome != shared.TransactionStatusCompleted && outcome != shared.TransactionStatusRejected {
		return ErrInvalidOutcome
	}
	if t.Status != shared.TransactionStatusPending {
		return ErrInvalidTransition{TransactionID: t.ID, Status: t.Status}
	}

	now := time.Now()
	t.Status = outcome
	t.ResolvedAt = &now
	if note != "" {
		t.Note = note
	}
	return nil
}

// RefundsOnRejection reports whether rejecting this transaction must credit
// the held amount back to the owning account.
func (t *Transaction) RefundsOnRejection() bool {
	return t.Kind == shared.TransactionKindTransfer
}
