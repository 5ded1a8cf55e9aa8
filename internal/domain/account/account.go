package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrEmptyDisplayName   = errors.New("display name cannot be empty")
	ErrEmptyContactHandle = errors.New("contact handle cannot be empty")
	ErrInvalidCredentials = errors.New("contact handle or PIN is incorrect")
	ErrEmptyFaceReference = errors.New("face reference artifact cannot be empty")
)

// Account represents a registered identity and its balance.
// The balance is mutated only through journal operations; every committed
// mutation keeps Balance >= 0.
type Account struct {
	ID            uuid.UUID          `json:"id"`
	DisplayName   string             `json:"display_name"`
	ContactHandle string             `json:"contact_handle"`
	PINHash       string             `json:"-"`
	Role          shared.AccountRole `json:"role"`
	Balance       int64              `json:"balance"` // Whole currency units
	Verified      bool               `json:"verified"`
	FaceRef       []byte             `json:"-"` // Reference biometric artifact, set on verification
	Version       int                `json:"version"` // For optimistic locking
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewAccount creates an account with the given role, zero balance and
// unverified identity. The PIN must already be hashed by the caller.
func NewAccount(displayName, contactHandle, pinHash string, role shared.AccountRole) (*Account, error) {
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}
	if contactHandle == "" {
		return nil, ErrEmptyContactHandle
	}

	now := time.Now()
	return &Account{
		ID:            uuid.New(),
		DisplayName:   displayName,
		ContactHandle: contactHandle,
		PINHash:       pinHash,
		Role:          role,
		Balance:       0,
		Verified:      false,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Credit adds the amount to the balance
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Debit subtracts the amount from the balance. The caller must hold the
// account row lock so the check and the mutation are one step.
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance < amount {
		return ErrInsufficientFunds{AccountID: a.ID, Balance: a.Balance, Amount: amount}
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// MarkVerified stores the reference artifact and flags the account as
// verified. Calling it again overwrites the artifact and keeps the flag set.
func (a *Account) MarkVerified(faceRef []byte) error {
	if len(faceRef) == 0 {
		return ErrEmptyFaceReference
	}

	a.FaceRef = faceRef
	a.Verified = true
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}
