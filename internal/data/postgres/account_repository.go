// Package postgres provides PostgreSQL implementations of the domain
// repositories. Accounts, journal transactions and the event outbox all
// live in the same database so one pgx transaction can cover a balance
// mutation and its journal write.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
	"github.com/btspay/transfer-ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to the given transaction so account
// updates commit atomically with journal and outbox writes
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account. A duplicate contact handle surfaces as
// ErrDuplicateContactHandle via the unique constraint.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, display_name, contact_handle, pin_hash, role, balance, verified, face_ref, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.DisplayName,
		acc.ContactHandle,
		acc.PINHash,
		acc.Role,
		acc.Balance,
		acc.Verified,
		acc.FaceRef,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return account.ErrDuplicateContactHandle{ContactHandle: acc.ContactHandle}
		}
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, display_name, contact_handle, pin_hash, role, balance, verified, face_ref, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByContactHandle retrieves an account by its login handle.
// Returns nil, nil when no account matches.
func (r *AccountRepository) GetByContactHandle(ctx context.Context, contactHandle string) (*account.Account, error) {
	query := `
		SELECT id, display_name, contact_handle, pin_hash, role, balance, verified, face_ref, version, created_at, updated_at
		FROM accounts
		WHERE contact_handle = $1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, contactHandle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by contact handle", "contact_handle", contactHandle, "error", err)
		return nil, fmt.Errorf("failed to get account by contact handle: %w", err)
	}

	return acc, nil
}

// Update persists an account using optimistic locking on the version column
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET display_name = $1, contact_handle = $2, pin_hash = $3, balance = $4, verified = $5, face_ref = $6, version = $7, updated_at = $8
		WHERE id = $9 AND version = $10
	`

	result, err := r.querier.Exec(ctx, query,
		acc.DisplayName,
		acc.ContactHandle,
		acc.PINHash,
		acc.Balance,
		acc.Verified,
		acc.FaceRef,
		acc.Version,
		acc.UpdatedAt,
		acc.ID,
		acc.Version-1, // Previous version guards against lost updates
	)
	if err != nil {
		r.logger.Error("Failed to update account", "id", acc.ID.String(), "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: acc.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic row lock on the account and returns
// its current state. Must run inside a transaction; this is what serializes
// concurrent debits on the same account.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, display_name, contact_handle, pin_hash, role, balance, verified, face_ref, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

// TotalClientBalance sums balances across all CLIENT accounts
func (r *AccountRepository) TotalClientBalance(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM accounts
		WHERE role = $1
	`

	var total int64
	if err := r.querier.QueryRow(ctx, query, shared.AccountRoleClient).Scan(&total); err != nil {
		r.logger.Error("Failed to sum client balances", "error", err)
		return 0, fmt.Errorf("failed to sum client balances: %w", err)
	}

	return total, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.DisplayName,
		&acc.ContactHandle,
		&acc.PINHash,
		&acc.Role,
		&acc.Balance,
		&acc.Verified,
		&acc.FaceRef,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
