// Package provider holds the narrow clients for the external services the
// backend depends on: transactional e-mail, the payment gateway and media
// storage. Every failure is returned to the caller; nothing is retried.
package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Mailer sends one HTML e-mail and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// Customer identifies the payer to the gateway.
type Customer struct {
	Email string
	Name  string
	Phone string
}

// InitRequest starts a hosted checkout.
type InitRequest struct {
	TxRef       string
	Amount      decimal.Decimal
	Currency    string
	Customer    Customer
	RedirectURL string
	Title       string
}

// InitResult is where to send the customer and the gateway's reference.
type InitResult struct {
	RedirectURL string
	Reference   string
}

// Verification is the gateway's view of a finished transaction.
type Verification struct {
	Status        string
	TxRef         string
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	PaymentType   string
}

// Gateway starts and verifies payments.
type Gateway interface {
	Initialize(ctx context.Context, req InitRequest) (InitResult, error)
	Verify(ctx context.Context, transactionID string) (Verification, error)
}

// Asset is an uploaded media object.
type Asset struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// MediaStorage uploads and deletes media.
type MediaStorage interface {
	Upload(ctx context.Context, data []byte, filename, folder string) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}
