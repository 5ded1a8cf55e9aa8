package handler

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/api/middleware"
	"github.com/btspay/transfer-ledger/internal/api/service"
	"github.com/btspay/transfer-ledger/internal/domain/account"
	"github.com/btspay/transfer-ledger/internal/domain/journal"
	"github.com/btspay/transfer-ledger/internal/domain/shared"
)

// TransactionHandler handles HTTP requests for journal operations
type TransactionHandler struct {
	journalService service.JournalService
	logger         *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, journalService service.JournalService) *TransactionHandler {
	return &TransactionHandler{
		journalService: journalService,
		logger:         logger,
	}
}

// Create submits a deposit or transfer. The response carries the final
// creation status: COMPLETED for a deposit, PENDING for a transfer.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.logger.Error("Invalid account ID", "account_id", req.AccountID, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var probe []byte
	if req.Probe != "" {
		probe, err = base64.StdEncoding.DecodeString(req.Probe)
		if err != nil {
			h.logger.Error("Invalid probe photo encoding", "error", err)
			RespondBadRequest(c, "Probe photo must be base64 encoded")
			return
		}
	}

	txn, err := h.journalService.CreateTransaction(
		c.Request.Context(),
		accountID,
		shared.TransactionKind(req.Kind),
		req.Amount,
		shared.PaymentMethod(req.Method),
		req.Counterparty,
		probe,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		var insufficient account.ErrInsufficientFunds
		if errors.As(err, &insufficient) {
			RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Balance is insufficient for this transfer")
			return
		}
		var mismatch service.ErrFaceMismatch
		if errors.As(err, &mismatch) {
			RespondForbidden(c, "Probe photo does not match the verified reference")
			return
		}
		if errors.Is(err, journal.ErrMissingCounterparty) || errors.Is(err, journal.ErrUnexpectedCounterparty) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create transaction", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Resolve applies an admin decision to a pending transaction
func (h *TransactionHandler) Resolve(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req ResolveTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.journalService.ResolveTransaction(
		c.Request.Context(),
		id,
		shared.TransactionStatus(req.Outcome),
		req.Note,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		var txnNotFound journal.ErrTransactionNotFound
		if errors.As(err, &txnNotFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		var invalidTransition journal.ErrInvalidTransition
		if errors.As(err, &invalidTransition) {
			RespondConflict(c, "Transaction is already resolved")
			return
		}
		h.logger.Error("Failed to resolve transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.journalService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByAccountID retrieves paginated transaction history for an account, newest first
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "account_id", accountIDParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txns, total, err := h.journalService.ListTransactions(
		c.Request.Context(),
		&accountID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to list transactions", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var transactions []TransactionResponse
	for _, txn := range txns {
		transactions = append(transactions, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// List retrieves paginated transactions across all accounts, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txns, total, err := h.journalService.ListTransactions(c.Request.Context(), nil, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	var transactions []TransactionResponse
	for _, txn := range txns {
		transactions = append(transactions, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}

// GetRisk returns the advisory note for a transaction
func (h *TransactionHandler) GetRisk(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	note, err := h.journalService.AssessRisk(c.Request.Context(), id)
	if err != nil {
		var txnNotFound journal.ErrTransactionNotFound
		if errors.As(err, &txnNotFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to assess risk", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, RiskResponse{
		TransactionID: id.String(),
		Note:          note,
	})
}

// GetStats returns the admin dashboard figures
func (h *TransactionHandler) GetStats(c *gin.Context) {
	stats, err := h.journalService.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get stats", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, stats)
}

// mapTransactionToResponse maps a journal transaction to a response DTO
func mapTransactionToResponse(txn *journal.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:           txn.ID.String(),
		AccountID:    txn.AccountID.String(),
		Kind:         string(txn.Kind),
		Amount:       txn.Amount,
		Method:       string(txn.Method),
		Counterparty: txn.Counterparty,
		Status:       string(txn.Status),
		Note:         txn.Note,
		CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
	}

	if txn.ResolvedAt != nil {
		response.ResolvedAt = txn.ResolvedAt.Format(time.RFC3339)
	}

	return response
}
