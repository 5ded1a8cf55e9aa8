package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
	"github.com/btspay/transfer-ledger/internal/platform/persistence"
)

// JournalRepository implements the journal.Repository interface for PostgreSQL
type JournalRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewJournalRepository creates a new PostgreSQL journal repository
func NewJournalRepository(logger *slog.Logger, db *persistence.PostgresDB) journal.Repository {
	return &JournalRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to the given transaction
func (r *JournalRepository) WithTx(tx pgx.Tx) journal.Repository {
	return &JournalRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a new transaction to the journal
func (r *JournalRepository) Create(ctx context.Context, txn *journal.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		txn.Kind,
		txn.Amount,
		txn.Method,
		nullableString(txn.Counterparty),
		txn.Status,
		nullableString(txn.Note),
		txn.CreatedAt,
		txn.ResolvedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*journal.Transaction, error) {
	query := `
		SELECT id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at
		FROM transactions
		WHERE id = $1
	`

	txn, err := r.scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, journal.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// LockForUpdate obtains a pessimistic row lock on the transaction for
// resolution. Must run inside a transaction.
func (r *JournalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*journal.Transaction, error) {
	query := `
		SELECT id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`

	txn, err := r.scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, journal.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to lock transaction for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock transaction for update: %w", err)
	}

	return txn, nil
}

// Update persists the status, note and resolution timestamp of a transaction
func (r *JournalRepository) Update(ctx context.Context, txn *journal.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, note = $2, resolved_at = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		nullableString(txn.Note),
		txn.ResolvedAt,
		txn.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return journal.ErrTransactionNotFound{TransactionID: txn.ID}
	}

	return nil
}

// List returns transactions newest first, optionally filtered to one account
func (r *JournalRepository) List(ctx context.Context, accountID *uuid.UUID, limit, offset int) ([]*journal.Transaction, error) {
	query := `
		SELECT id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at
		FROM transactions
		WHERE ($1::uuid IS NULL OR account_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*journal.Transaction
	for rows.Next() {
		txn, err := r.scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}

// Count returns the number of transactions, optionally for one account
func (r *JournalRepository) Count(ctx context.Context, accountID *uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE ($1::uuid IS NULL OR account_id = $1)
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// CountByStatus returns the number of transactions in the given status
func (r *JournalRepository) CountByStatus(ctx context.Context, status shared.TransactionStatus) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE status = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, status).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions by status", "status", string(status), "error", err)
		return 0, fmt.Errorf("failed to count transactions by status: %w", err)
	}

	return count, nil
}

func (r *JournalRepository) scanTransaction(row pgx.Row) (*journal.Transaction, error) {
	var (
		txn          journal.Transaction
		counterparty *string
		note         *string
	)
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Kind,
		&txn.Amount,
		&txn.Method,
		&counterparty,
		&txn.Status,
		&note,
		&txn.CreatedAt,
		&txn.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if counterparty != nil {
		txn.Counterparty = *counterparty
	}
	if note != nil {
		txn.Note = *note
	}
	return &txn, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
