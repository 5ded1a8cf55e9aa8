package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/audit"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// AccountService defines the interface for account operations
type AccountService interface {
	// Register creates a new CLIENT account with a hashed PIN
	// Returns ErrDuplicateContactHandle if the contact handle is taken
	Register(ctx context.Context, displayName, contactHandle, pin string) (*account.Account, error)

	// Authenticate checks the contact handle and PIN
	// Returns ErrInvalidCredentials on any mismatch
	Authenticate(ctx context.Context, contactHandle, pin string) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// Verify matches the probe photo against the stored reference, or
	// enrolls the probe as the reference on first verification
	Verify(ctx context.Context, id uuid.UUID, probe []byte) (*account.Account, error)

	// EnsureAdmin creates the seeded ADMIN account if it does not exist
	EnsureAdmin(ctx context.Context, displayName, contactHandle, pin string) error
}

// DashboardStats aggregates the figures shown on the admin dashboard
type DashboardStats struct {
	TotalClientBalance int64 `json:"total_client_balance"`
	TransactionCount   int64 `json:"transaction_count"`
	PendingCount       int64 `json:"pending_count"`
}

// JournalService defines the interface for journal operations
type JournalService interface {
	// CreateTransaction applies a deposit or transfer: the balance
	// mutation, the journal record and the outbox event commit atomically.
	// A transfer may carry a probe photo; when the sender is verified, the
	// probe is matched against the stored reference before any funds move.
	// Returns ErrInsufficientFunds when a transfer exceeds the balance and
	// ErrFaceMismatch when the probe does not match.
	CreateTransaction(ctx context.Context, accountID uuid.UUID, kind shared.TransactionKind, amount int64, method shared.PaymentMethod, counterparty string, probe []byte, correlationID string) (*journal.Transaction, error)

	// ResolveTransaction moves a PENDING transaction to COMPLETED or
	// REJECTED. A rejected transfer refunds the held amount in the same
	// database transaction. Returns ErrInvalidTransition when the
	// transaction is already terminal.
	ResolveTransaction(ctx context.Context, transactionID uuid.UUID, outcome shared.TransactionStatus, note, correlationID string) (*journal.Transaction, error)

	// GetTransactionByID retrieves a transaction. Returns nil if not found.
	GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*journal.Transaction, error)

	// ListTransactions returns paginated transactions newest first, with
	// the total count. A nil accountID lists across all accounts.
	ListTransactions(ctx context.Context, accountID *uuid.UUID, page, perPage int) ([]*journal.Transaction, int64, error)

	// AssessRisk produces an advisory note for a transaction
	AssessRisk(ctx context.Context, transactionID uuid.UUID) (string, error)

	// GetStats aggregates the admin dashboard figures
	GetStats(ctx context.Context) (*DashboardStats, error)
}

// AuditService exposes the archived audit trail to the admin API
type AuditService interface {
	// GetTrail returns paginated audit events within [from, to], newest
	// first, with the total count
	GetTrail(ctx context.Context, from, to time.Time, page, perPage int) ([]*audit.Event, int64, error)

	// GetTransactionTrail returns the status history of one transaction in
	// chronological order. Returns audit.ErrEventNotFound when no events
	// have been archived for it
	GetTransactionTrail(ctx context.Context, transactionID uuid.UUID) ([]*audit.Event, error)
}
