package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/btspay/transfer-ledger/internal/advisor"
	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// ErrFaceMismatch indicates the verification photo did not match the
// stored reference
type ErrFaceMismatch struct {
	AccountID uuid.UUID
}

func (e ErrFaceMismatch) Error() string {
	return "verification photo does not match the reference for account: " + e.AccountID.String()
}

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	logger      *slog.Logger
	accountRepo account.Repository
	advisor     advisor.Advisor
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, accountRepo account.Repository, adv advisor.Advisor) AccountService {
	return &AccountServiceImpl{
		logger:      logger,
		accountRepo: accountRepo,
		advisor:     adv,
	}
}

// Register creates a new CLIENT account, checking for duplicate contact handles
func (s *AccountServiceImpl) Register(ctx context.Context, displayName, contactHandle, pin string) (*account.Account, error) {
	existing, err := s.accountRepo.GetByContactHandle(ctx, contactHandle)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, account.ErrDuplicateContactHandle{ContactHandle: contactHandle}
	}

	pinHash, err := hashPIN(pin)
	if err != nil {
		return nil, err
	}

	acc, err := account.NewAccount(displayName, contactHandle, pinHash, shared.AccountRoleClient)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account registered",
		"account_id", acc.ID.String(),
		"contact_handle", acc.ContactHandle,
	)
	return acc, nil
}

// Authenticate checks the contact handle and PIN. Unknown handles and wrong
// PINs return the same error so credentials cannot be probed.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, contactHandle, pin string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByContactHandle(ctx, contactHandle)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, account.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PINHash), []byte(pin)); err != nil {
		return nil, account.ErrInvalidCredentials
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// Verify enrolls or re-checks the account's face reference. The first call
// stores the probe as the reference; later calls must match it.
func (s *AccountServiceImpl) Verify(ctx context.Context, id uuid.UUID, probe []byte) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if acc.Verified && len(acc.FaceRef) > 0 {
		match, err := s.advisor.MatchFaces(ctx, acc.FaceRef, probe)
		if err != nil {
			return nil, err
		}
		if !match {
			return nil, ErrFaceMismatch{AccountID: id}
		}
		return acc, nil
	}

	if err := acc.MarkVerified(probe); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account verified", "account_id", acc.ID.String())
	return acc, nil
}

// EnsureAdmin seeds the administrator account on startup. An existing
// account with the configured contact handle is left untouched.
func (s *AccountServiceImpl) EnsureAdmin(ctx context.Context, displayName, contactHandle, pin string) error {
	existing, err := s.accountRepo.GetByContactHandle(ctx, contactHandle)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	pinHash, err := hashPIN(pin)
	if err != nil {
		return err
	}

	acc, err := account.NewAccount(displayName, contactHandle, pinHash, shared.AccountRoleAdmin)
	if err != nil {
		return err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return err
	}

	s.logger.Info("Seeded admin account",
		"account_id", acc.ID.String(),
		"contact_handle", acc.ContactHandle,
	)
	return nil
}

func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}
