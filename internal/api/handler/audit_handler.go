package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/api/service"
	"github.com/btspay/transfer-ledger/internal/domain/audit"
)

// AuditHandler exposes the archived audit trail to administrators
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetTrail retrieves paginated audit events within a time range, newest first
func (h *AuditHandler) GetTrail(c *gin.Context) {
	var params AuditTrailParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid audit trail parameters", "error", err)
		RespondBadRequest(c, "Invalid audit trail parameters")
		return
	}

	from, err := time.Parse(time.RFC3339, params.From)
	if err != nil {
		RespondBadRequest(c, "Parameter 'from' must be RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, params.To)
	if err != nil {
		RespondBadRequest(c, "Parameter 'to' must be RFC3339")
		return
	}
	if to.Before(from) {
		RespondBadRequest(c, "Parameter 'to' must not precede 'from'")
		return
	}

	events, total, err := h.auditService.GetTrail(c.Request.Context(), from, to, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to get audit trail", "error", err)
		RespondInternalError(c)
		return
	}

	var responses []AuditEventResponse
	for _, event := range events {
		responses = append(responses, mapEventToResponse(event))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// GetTransactionTrail retrieves the status history of a single transaction,
// oldest event first
func (h *AuditHandler) GetTransactionTrail(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	events, err := h.auditService.GetTransactionTrail(c.Request.Context(), id)
	if err != nil {
		var notFound audit.ErrEventNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "No audit events for transaction")
			return
		}
		h.logger.Error("Failed to get transaction trail", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, mapEventToResponse(event))
	}

	RespondOK(c, responses)
}

// mapEventToResponse maps an audit event to a response DTO
func mapEventToResponse(event *audit.Event) AuditEventResponse {
	return AuditEventResponse{
		EventID:       event.EventID.String(),
		TransactionID: event.TransactionID.String(),
		AccountID:     event.AccountID.String(),
		Kind:          string(event.Kind),
		Amount:        event.Amount,
		Method:        string(event.Method),
		Counterparty:  event.Counterparty,
		Status:        string(event.Status),
		Note:          event.Note,
		CorrelationID: event.CorrelationID,
		OccurredAt:    event.OccurredAt.Format(time.RFC3339),
	}
}
