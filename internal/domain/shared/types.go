package shared

// TransactionKind defines the two journal operations
type TransactionKind string

const (
	TransactionKindDeposit  TransactionKind = "DEPOSIT"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// Valid reports whether the kind is one of the known variants
func (k TransactionKind) Valid() bool {
	return k == TransactionKindDeposit || k == TransactionKindTransfer
}

// TransactionStatus defines journal lifecycle states.
// PENDING is the only non-terminal state; COMPLETED and REJECTED are final.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
)

// Valid reports whether the status is one of the known variants
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s == TransactionStatusCompleted || s == TransactionStatusRejected
}

// Terminal reports whether no further transition is allowed from this status
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusRejected
}

// PaymentMethod tags the payment channel a transaction moves through.
// These are logic discriminants; display labels belong to the client layer.
type PaymentMethod string

const (
	PaymentMethodKkiapay      PaymentMethod = "KKIAPAY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodWesternUnion PaymentMethod = "WESTERN_UNION"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodMoovMoney    PaymentMethod = "MOOV_MONEY"
)

// Valid reports whether the method is one of the known channels
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodKkiapay, PaymentMethodBankTransfer, PaymentMethodWesternUnion,
		PaymentMethodMobileMoney, PaymentMethodMoovMoney:
		return true
	}
	return false
}

// AccountRole defines account privileges, fixed at creation
type AccountRole string

const (
	AccountRoleClient AccountRole = "CLIENT"
	AccountRoleAdmin  AccountRole = "ADMIN"
)

// OutboxStatus defines journal event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
