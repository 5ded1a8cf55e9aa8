package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// Repository defines journal persistence operations. List results are
// always most-recent-first.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Update(ctx context.Context, txn *Transaction) error

	// LockForUpdate acquires a pessimistic row lock for resolution
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// List returns transactions newest first; accountID nil means all accounts
	List(ctx context.Context, accountID *uuid.UUID, limit, offset int) ([]*Transaction, error)
	Count(ctx context.Context, accountID *uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status shared.TransactionStatus) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing journal record
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// ErrInvalidTransition indicates a resolve call on a non-PENDING transaction
type ErrInvalidTransition struct {
	TransactionID uuid.UUID
	Status        shared.TransactionStatus
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("transaction %s cannot be resolved from status %s", e.TransactionID, e.Status)
}
