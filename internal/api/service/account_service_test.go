package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestAccountServiceImpl_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		mockRepo.On("GetByContactHandle", ctx, "awa@example.com").Return(nil, nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*account.Account")).Return(nil).Once()

		acc, err := svc.Register(ctx, "Awa Diallo", "awa@example.com", "123456")

		require.NoError(t, err)
		assert.Equal(t, "Awa Diallo", acc.DisplayName)
		assert.Equal(t, shared.AccountRoleClient, acc.Role)
		assert.Equal(t, int64(0), acc.Balance)
		assert.NotEqual(t, "123456", acc.PINHash) // Stored hashed, never plain
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PINHash), []byte("123456")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateContactHandle", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		existing := &account.Account{ID: uuid.New(), ContactHandle: "awa@example.com"}
		mockRepo.On("GetByContactHandle", ctx, "awa@example.com").Return(existing, nil).Once()

		_, err := svc.Register(ctx, "Awa Diallo", "awa@example.com", "123456")

		var duplicateErr account.ErrDuplicateContactHandle
		assert.ErrorAs(t, err, &duplicateErr)
		mockRepo.AssertNotCalled(t, "Create", ctx, mock.AnythingOfType("*account.Account"))
	})

	t.Run("EmptyDisplayName", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		mockRepo.On("GetByContactHandle", ctx, "awa@example.com").Return(nil, nil).Once()

		_, err := svc.Register(ctx, "", "awa@example.com", "123456")

		assert.ErrorIs(t, err, account.ErrEmptyDisplayName)
		mockRepo.AssertNotCalled(t, "Create", ctx, mock.AnythingOfType("*account.Account"))
	})
}

func TestAccountServiceImpl_Authenticate(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &account.Account{
		ID:            uuid.New(),
		DisplayName:   "Awa Diallo",
		ContactHandle: "awa@example.com",
		PINHash:       string(hash),
		Role:          shared.AccountRoleClient,
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		svc := NewAccountService(newTestLogger(), mockRepo, new(MockAdvisor))

		mockRepo.On("GetByContactHandle", ctx, "awa@example.com").Return(stored, nil).Once()

		acc, err := svc.Authenticate(ctx, "awa@example.com", "123456")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, acc.ID)
	})

	t.Run("WrongPIN", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		svc := NewAccountService(newTestLogger(), mockRepo, new(MockAdvisor))

		mockRepo.On("GetByContactHandle", ctx, "awa@example.com").Return(stored, nil).Once()

		_, err := svc.Authenticate(ctx, "awa@example.com", "654321")
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	})

	t.Run("UnknownHandle", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		svc := NewAccountService(newTestLogger(), mockRepo, new(MockAdvisor))

		mockRepo.On("GetByContactHandle", ctx, "nobody@example.com").Return(nil, nil).Once()

		_, err := svc.Authenticate(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	})
}

func TestAccountServiceImpl_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstVerificationEnrollsReference", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		acc := &account.Account{ID: uuid.New(), DisplayName: "Awa Diallo", Version: 1}
		mockRepo.On("GetByID", ctx, acc.ID).Return(acc, nil).Once()
		mockRepo.On("Update", ctx, acc).Return(nil).Once()

		verified, err := svc.Verify(ctx, acc.ID, []byte("probe-photo"))

		require.NoError(t, err)
		assert.True(t, verified.Verified)
		assert.Equal(t, []byte("probe-photo"), verified.FaceRef)
		mockAdvisor.AssertNotCalled(t, "MatchFaces", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepeatVerificationMatches", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		acc := &account.Account{ID: uuid.New(), Verified: true, FaceRef: []byte("reference")}
		mockRepo.On("GetByID", ctx, acc.ID).Return(acc, nil).Once()
		mockAdvisor.On("MatchFaces", ctx, []byte("reference"), []byte("probe")).Return(true, nil).Once()

		_, err := svc.Verify(ctx, acc.ID, []byte("probe"))

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})

	t.Run("RepeatVerificationMismatch", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		mockAdvisor := new(MockAdvisor)
		svc := NewAccountService(newTestLogger(), mockRepo, mockAdvisor)

		acc := &account.Account{ID: uuid.New(), Verified: true, FaceRef: []byte("reference")}
		mockRepo.On("GetByID", ctx, acc.ID).Return(acc, nil).Once()
		mockAdvisor.On("MatchFaces", ctx, []byte("reference"), []byte("someone-else")).Return(false, nil).Once()

		_, err := svc.Verify(ctx, acc.ID, []byte("someone-else"))

		var mismatch ErrFaceMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, acc.ID, mismatch.AccountID)
	})
}

func TestAccountServiceImpl_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		svc := NewAccountService(newTestLogger(), mockRepo, new(MockAdvisor))

		mockRepo.On("GetByContactHandle", ctx, "admin@example.com").Return(nil, nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(acc *account.Account) bool {
			return acc.Role == shared.AccountRoleAdmin && acc.ContactHandle == "admin@example.com"
		})).Return(nil).Once()

		err := svc.EnsureAdmin(ctx, "Administrator", "admin@example.com", "000000")
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SkipsWhenPresent", func(t *testing.T) {
		mockRepo := new(MockAccountRepository)
		svc := NewAccountService(newTestLogger(), mockRepo, new(MockAdvisor))

		existing := &account.Account{ID: uuid.New(), Role: shared.AccountRoleAdmin}
		mockRepo.On("GetByContactHandle", ctx, "admin@example.com").Return(existing, nil).Once()

		err := svc.EnsureAdmin(ctx, "Administrator", "admin@example.com", "000000")
		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
	})
}
