package model

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentReversed   PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentSuccessful, PaymentFailed, PaymentCancelled, PaymentReversed:
		return true
	}
	return false
}

// MismatchReason is stored when a reported success does not match the order.
const MismatchReason = "amount_or_currency_mismatch"

// PaymentMetadata is what the gateway reported for the charge.
type PaymentMetadata struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentType string          `json:"paymentType,omitempty"`
}

// Payment is one charge attempt against an order.
type Payment struct {
	ID             string           `json:"id"`
	OrderID        string           `json:"orderId"`
	CustomerID     string           `json:"customerId"`
	TenantID       string           `json:"tenantId"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	PaymentMethod  string           `json:"paymentMethod"`
	Provider       string           `json:"provider"`
	TransactionRef string           `json:"transactionRef"`
	ProviderRef    string           `json:"providerRef,omitempty"`
	Status         PaymentStatus    `json:"status"`
	Metadata       *PaymentMetadata `json:"metadata,omitempty"`
	PaidAt         *int64           `json:"paidAt,omitempty"`
	FailureReason  string           `json:"failureReason,omitempty"`
	RefundedAmount *decimal.Decimal `json:"refundedAmount,omitempty"`
	RefundedAt     *int64           `json:"refundedAt,omitempty"`
	CreatedAt      int64            `json:"createdAt"`
	UpdatedAt      int64            `json:"updatedAt"`
}

// Matches reports whether the reported metadata equals the order total
// exactly, amount and currency both.
func (m *PaymentMetadata) Matches(p Pricing) bool {
	return m != nil && m.Currency == p.Currency && m.Amount.Equal(p.Total)
}
