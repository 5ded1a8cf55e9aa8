package handler

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/api/service"
	"github.com/btspay/transfer-ledger/internal/domain/account"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Register handles creation of a new client account, checking for duplicate contact handles
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.Register(c.Request.Context(), req.DisplayName, req.ContactHandle, req.PIN)
	if err != nil {
		var duplicateErr account.ErrDuplicateContactHandle
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to register duplicate contact handle", "contact_handle", duplicateErr.ContactHandle)
			RespondConflict(c, "Account with this contact handle already exists")
			return
		}
		h.logger.Error("Failed to register account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// Login authenticates a contact handle and PIN pair
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.Authenticate(c.Request.Context(), req.ContactHandle, req.PIN)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Contact handle or PIN is incorrect")
			return
		}
		h.logger.Error("Failed to authenticate", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Verify enrolls or checks the verification photo for an account
func (h *AccountHandler) Verify(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	photo, err := base64.StdEncoding.DecodeString(req.Photo)
	if err != nil || len(photo) == 0 {
		RespondBadRequest(c, "Photo must be non-empty base64 data")
		return
	}

	acc, err := h.accountService.Verify(c.Request.Context(), id, photo)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		var mismatch service.ErrFaceMismatch
		if errors.As(err, &mismatch) {
			RespondForbidden(c, "Verification photo does not match")
			return
		}
		h.logger.Error("Failed to verify account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID.String(),
		DisplayName:   acc.DisplayName,
		ContactHandle: acc.ContactHandle,
		Role:          string(acc.Role),
		Balance:       acc.Balance,
		Verified:      acc.Verified,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
}
