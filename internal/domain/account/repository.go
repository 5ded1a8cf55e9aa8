package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByContactHandle(ctx context.Context, contactHandle string) (*Account, error)
	Update(ctx context.Context, account *Account) error

	// LockForUpdate acquires a pessimistic row lock for journal processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// TotalClientBalance sums the balances of all CLIENT accounts
	TotalClientBalance(ctx context.Context) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// ErrInsufficientFunds indicates a debit larger than the available balance
type ErrInsufficientFunds struct {
	AccountID uuid.UUID
	Balance   int64
	Amount    int64
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: balance %d, requested %d", e.AccountID, e.Balance, e.Amount)
}

// ErrDuplicateContactHandle indicates contact handle uniqueness violation
type ErrDuplicateContactHandle struct {
	ContactHandle string
}

func (e ErrDuplicateContactHandle) Error() string {
	return "account with contact handle already exists: " + e.ContactHandle
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}
