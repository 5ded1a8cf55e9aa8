package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btspay/transfer-ledger/internal/advisor"
	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/audit"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/outbox"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
	"github.com/btspay/transfer-ledger/internal/platform/persistence"
)

// JournalServiceImpl implements the JournalService interface. Every
// balance-affecting operation runs inside one database transaction covering
// the account row, the journal record and the outbox event.
type JournalServiceImpl struct {
	logger      *slog.Logger
	txManager   persistence.TxManager
	accountRepo account.Repository
	journalRepo journal.Repository
	outboxRepo  outbox.Repository
	advisor     advisor.Advisor
}

// NewJournalService creates a new journal service
func NewJournalService(
	logger *slog.Logger,
	txManager persistence.TxManager,
	accountRepo account.Repository,
	journalRepo journal.Repository,
	outboxRepo outbox.Repository,
	adv advisor.Advisor,
) JournalService {
	return &JournalServiceImpl{
		logger:      logger,
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		advisor:     adv,
	}
}

// CreateTransaction applies a deposit or transfer. A deposit credits the
// account and lands COMPLETED; a transfer debits the account immediately
// (the hold) and lands PENDING. The FOR UPDATE lock on the account row
// serializes concurrent submissions against the same balance.
func (s *JournalServiceImpl) CreateTransaction(ctx context.Context, accountID uuid.UUID, kind shared.TransactionKind, amount int64, method shared.PaymentMethod, counterparty string, probe []byte, correlationID string) (*journal.Transaction, error) {
	txn, err := journal.NewTransaction(accountID, kind, amount, method, counterparty)
	if err != nil {
		return nil, err
	}

	if kind == shared.TransactionKindTransfer && len(probe) > 0 {
		if err := s.matchSenderFace(ctx, accountID, probe); err != nil {
			return nil, err
		}
	}

	err = s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		journalRepo := s.journalRepo.WithTx(tx)
		outboxRepo := s.outboxRepo.WithTx(tx)

		acc, err := accountRepo.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		switch kind {
		case shared.TransactionKindDeposit:
			if err := acc.Credit(amount); err != nil {
				return err
			}
		case shared.TransactionKindTransfer:
			if err := acc.Debit(amount); err != nil {
				return err
			}
		}

		if err := accountRepo.Update(ctx, acc); err != nil {
			return err
		}
		if err := journalRepo.Create(ctx, txn); err != nil {
			return err
		}

		return s.enqueueEvent(ctx, outboxRepo, txn, correlationID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created",
		"transaction_id", txn.ID.String(),
		"account_id", accountID.String(),
		"kind", string(kind),
		"amount", amount,
		"status", string(txn.Status),
	)
	return txn, nil
}

// ResolveTransaction moves a PENDING transaction to its terminal status.
// Rejecting a transfer credits the held amount back in the same database
// transaction; the one-way PENDING guard makes that refund single-shot.
func (s *JournalServiceImpl) ResolveTransaction(ctx context.Context, transactionID uuid.UUID, outcome shared.TransactionStatus, note, correlationID string) (*journal.Transaction, error) {
	var resolved *journal.Transaction

	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accountRepo := s.accountRepo.WithTx(tx)
		journalRepo := s.journalRepo.WithTx(tx)
		outboxRepo := s.outboxRepo.WithTx(tx)

		txn, err := journalRepo.LockForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}

		if err := txn.Resolve(outcome, note); err != nil {
			return err
		}

		if outcome == shared.TransactionStatusRejected && txn.RefundsOnRejection() {
			acc, err := accountRepo.LockForUpdate(ctx, txn.AccountID)
			if err != nil {
				return err
			}
			if err := acc.Credit(txn.Amount); err != nil {
				return err
			}
			if err := accountRepo.Update(ctx, acc); err != nil {
				return err
			}
		}

		if err := journalRepo.Update(ctx, txn); err != nil {
			return err
		}

		if err := s.enqueueEvent(ctx, outboxRepo, txn, correlationID); err != nil {
			return err
		}

		resolved = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction resolved",
		"transaction_id", resolved.ID.String(),
		"account_id", resolved.AccountID.String(),
		"status", string(resolved.Status),
	)
	return resolved, nil
}

// GetTransactionByID retrieves a transaction by its ID. Returns nil if not found
func (s *JournalServiceImpl) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*journal.Transaction, error) {
	txn, err := s.journalRepo.GetByID(ctx, transactionID)
	if err != nil {
		var errNotFound journal.ErrTransactionNotFound
		if errors.As(err, &errNotFound) {
			s.logger.Info("Transaction not found", "transaction_id", transactionID.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transaction by ID", "transaction_id", transactionID.String(), "error", err)
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves a paginated list of transactions, newest first.
// Returns transactions, total count, and any error.
func (s *JournalServiceImpl) ListTransactions(ctx context.Context, accountID *uuid.UUID, page, perPage int) ([]*journal.Transaction, int64, error) {
	offset := (page - 1) * perPage

	txns, err := s.journalRepo.List(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.journalRepo.Count(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// AssessRisk produces an advisory note for the transaction via the advisor.
// Returns ErrTransactionNotFound when the transaction does not exist.
func (s *JournalServiceImpl) AssessRisk(ctx context.Context, transactionID uuid.UUID) (string, error) {
	txn, err := s.journalRepo.GetByID(ctx, transactionID)
	if err != nil {
		return "", err
	}

	ownerName := ""
	if acc, err := s.accountRepo.GetByID(ctx, txn.AccountID); err == nil {
		ownerName = acc.DisplayName
	}

	return s.advisor.AssessRisk(ctx, txn, ownerName), nil
}

// GetStats aggregates the admin dashboard figures
func (s *JournalServiceImpl) GetStats(ctx context.Context) (*DashboardStats, error) {
	totalBalance, err := s.accountRepo.TotalClientBalance(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.journalRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	pending, err := s.journalRepo.CountByStatus(ctx, shared.TransactionStatusPending)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalClientBalance: totalBalance,
		TransactionCount:   count,
		PendingCount:       pending,
	}, nil
}

// matchSenderFace gates a verified sender's transfer on the advisor's face
// comparison. It runs before the database transaction so the advisor call
// never holds the account row lock. Unverified senders pass through.
func (s *JournalServiceImpl) matchSenderFace(ctx context.Context, accountID uuid.UUID, probe []byte) error {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !acc.Verified || len(acc.FaceRef) == 0 {
		return nil
	}

	match, err := s.advisor.MatchFaces(ctx, acc.FaceRef, probe)
	if err != nil {
		return err
	}
	if !match {
		s.logger.Warn("Transfer blocked, probe photo does not match reference", "account_id", accountID.String())
		return ErrFaceMismatch{AccountID: accountID}
	}

	return nil
}

// enqueueEvent snapshots the transaction as an audit event and writes it to
// the outbox inside the caller's database transaction
func (s *JournalServiceImpl) enqueueEvent(ctx context.Context, outboxRepo outbox.Repository, txn *journal.Transaction, correlationID string) error {
	event := audit.NewEvent(txn, correlationID)
	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return outboxRepo.Create(ctx, message)
}
