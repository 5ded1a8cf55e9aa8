package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/btspay/transfer-ledger/internal/domain/audit"
)

// AuditServiceImpl implements the AuditService interface over the archived
// trail in MongoDB
type AuditServiceImpl struct {
	auditRepo audit.Repository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo audit.Repository) AuditService {
	return &AuditServiceImpl{
		auditRepo: auditRepo,
	}
}

// GetTrail returns paginated audit events within [from, to], newest first
func (s *AuditServiceImpl) GetTrail(ctx context.Context, from, to time.Time, page, perPage int) ([]*audit.Event, int64, error) {
	offset := (page - 1) * perPage

	events, err := s.auditRepo.GetByTimeRange(ctx, from, to, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.auditRepo.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// GetTransactionTrail returns the archived status history of one transaction,
// oldest event first
func (s *AuditServiceImpl) GetTransactionTrail(ctx context.Context, transactionID uuid.UUID) ([]*audit.Event, error) {
	return s.auditRepo.GetByTransactionID(ctx, transactionID)
}
