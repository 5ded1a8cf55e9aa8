package handler

// RegisterRequest represents a request to open a new account
type RegisterRequest struct {
	DisplayName   string `json:"display_name" binding:"required"`
	ContactHandle string `json:"contact_handle" binding:"required"`
	PIN           string `json:"pin" binding:"required,min=4"`
}

// LoginRequest represents an authentication attempt
type LoginRequest struct {
	ContactHandle string `json:"contact_handle" binding:"required"`
	PIN           string `json:"pin" binding:"required"`
}

// VerifyRequest carries the base64-encoded verification photo
type VerifyRequest struct {
	Photo string `json:"photo" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	ContactHandle string `json:"contact_handle"`
	Role          string `json:"role"`
	Balance       int64  `json:"balance"`
	Verified      bool   `json:"verified"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// CreateTransactionRequest represents a request to submit a deposit or
// transfer. Probe carries an optional base64 photo of the sender; a verified
// sender's probe is matched against the stored reference before funds move.
type CreateTransactionRequest struct {
	AccountID    string `json:"account_id" binding:"required,uuid"`
	Kind         string `json:"kind" binding:"required,oneof=DEPOSIT TRANSFER"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Method       string `json:"method" binding:"required,oneof=KKIAPAY BANK_TRANSFER WESTERN_UNION MOBILE_MONEY MOOV_MONEY"`
	Counterparty string `json:"counterparty,omitempty"`
	Probe        string `json:"probe,omitempty"`
}

// ResolveTransactionRequest represents an admin decision on a pending transaction
type ResolveTransactionRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=COMPLETED REJECTED"`
	Note    string `json:"note,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount"`
	Method       string `json:"method"`
	Counterparty string `json:"counterparty,omitempty"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
	ResolvedAt   string `json:"resolved_at,omitempty"`
}

// RiskResponse carries the advisory note for a transaction
type RiskResponse struct {
	TransactionID string `json:"transaction_id"`
	Note          string `json:"note"`
}

// AuditEventResponse represents an archived audit event in API responses
type AuditEventResponse struct {
	EventID       string `json:"event_id"`
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	Counterparty  string `json:"counterparty,omitempty"`
	Status        string `json:"status"`
	Note          string `json:"note,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// AuditTrailParams represents the time range filter for the audit trail
type AuditTrailParams struct {
	From    string `form:"from" binding:"required"`
	To      string `form:"to" binding:"required"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=10" binding:"min=1,max=100"`
}
