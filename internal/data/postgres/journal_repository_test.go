package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

func newTestTransfer() *journal.Transaction {
	return &journal.Transaction{
		ID:           uuid.New(),
		AccountID:    uuid.New(),
		Kind:         shared.TransactionKindTransfer,
		Amount:       2500,
		Method:       shared.PaymentMethodMobileMoney,
		Counterparty: "Moussa Traore",
		Status:       shared.TransactionStatusPending,
		CreatedAt:    time.Now(),
	}
}

const transactionColumns = "id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at"

func transactionRows(txn *journal.Transaction) *pgxmock.Rows {
	var counterparty, note *string
	if txn.Counterparty != "" {
		counterparty = &txn.Counterparty
	}
	if txn.Note != "" {
		note = &txn.Note
	}
	return pgxmock.NewRows([]string{"id", "account_id", "kind", "amount", "method", "counterparty", "status", "note", "created_at", "resolved_at"}).
		AddRow(txn.ID, txn.AccountID, txn.Kind, txn.Amount, txn.Method, counterparty, txn.Status, note, txn.CreatedAt, txn.ResolvedAt)
}

func TestJournalRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JournalRepository{querier: mock, logger: logger}
	txn := newTestTransfer()

	query := `
		INSERT INTO transactions \(id, account_id, kind, amount, method, counterparty, status, note, created_at, resolved_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.ID, txn.AccountID, txn.Kind, txn.Amount, txn.Method, &txn.Counterparty, txn.Status, (*string)(nil), txn.CreatedAt, txn.ResolvedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, txn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deposit stores null counterparty", func(t *testing.T) {
		deposit, err := journal.NewTransaction(txn.AccountID, shared.TransactionKindDeposit, 1000, shared.PaymentMethodKkiapay, "")
		require.NoError(t, err)

		mock.ExpectExec(query).
			WithArgs(deposit.ID, deposit.AccountID, deposit.Kind, deposit.Amount, deposit.Method, (*string)(nil), deposit.Status, (*string)(nil), deposit.CreatedAt, deposit.ResolvedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, deposit))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJournalRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JournalRepository{querier: mock, logger: logger}
	txn := newTestTransfer()

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(txn.ID).WillReturnRows(transactionRows(txn))

		got, err := repo.GetByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Equal(t, txn.ID, got.ID)
		assert.Equal(t, txn.Counterparty, got.Counterparty)
		assert.Equal(t, shared.TransactionStatusPending, got.Status)
	})

	t.Run("not found", func(t *testing.T) {
		missingID := uuid.New()
		mock.ExpectQuery(query).WithArgs(missingID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, missingID)
		var notFound journal.ErrTransactionNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, missingID, notFound.TransactionID)
	})
}

func TestJournalRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JournalRepository{querier: mock, logger: logger}
	txn := newTestTransfer()
	now := time.Now()
	txn.Status = shared.TransactionStatusRejected
	txn.Note = "refused by recipient bank"
	txn.ResolvedAt = &now

	query := `
		UPDATE transactions
		SET status = \$1, note = \$2, resolved_at = \$3
		WHERE id = \$4
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.Status, &txn.Note, txn.ResolvedAt, txn.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, txn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished row", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.Status, &txn.Note, txn.ResolvedAt, txn.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, txn)
		var notFound journal.ErrTransactionNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestJournalRepository_List(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JournalRepository{querier: mock, logger: logger}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE \(\$1::uuid IS NULL OR account_id = \$1\)
		ORDER BY created_at DESC
		LIMIT \$2 OFFSET \$3
	`

	t.Run("filtered by account", func(t *testing.T) {
		txn := newTestTransfer()
		mock.ExpectQuery(query).
			WithArgs(&txn.AccountID, 10, 0).
			WillReturnRows(transactionRows(txn))

		txns, err := repo.List(ctx, &txn.AccountID, 10, 0)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, txn.ID, txns[0].ID)
	})

	t.Run("unfiltered", func(t *testing.T) {
		first := newTestTransfer()
		second := newTestTransfer()
		rows := transactionRows(first)
		rows.AddRow(second.ID, second.AccountID, second.Kind, second.Amount, second.Method, &second.Counterparty, second.Status, (*string)(nil), second.CreatedAt, second.ResolvedAt)

		mock.ExpectQuery(query).
			WithArgs((*uuid.UUID)(nil), 20, 0).
			WillReturnRows(rows)

		txns, err := repo.List(ctx, nil, 20, 0)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})
}

func TestJournalRepository_Counts(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JournalRepository{querier: mock, logger: logger}

	t.Run("count all", func(t *testing.T) {
		query := `
		SELECT COUNT\(\*\)
		FROM transactions
		WHERE \(\$1::uuid IS NULL OR account_id = \$1\)
	`
		mock.ExpectQuery(query).
			WithArgs((*uuid.UUID)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

		count, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(42), count)
	})

	t.Run("count pending", func(t *testing.T) {
		query := `
		SELECT COUNT\(\*\)
		FROM transactions
		WHERE status = \$1
	`
		mock.ExpectQuery(query).
			WithArgs(shared.TransactionStatusPending).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

		count, err := repo.CountByStatus(ctx, shared.TransactionStatusPending)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})
}
