package provider

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FlutterwaveGateway talks to the Flutterwave v3 API.
type FlutterwaveGateway struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewFlutterwaveGateway(baseURL, secretKey string, logger *zap.Logger) *FlutterwaveGateway {
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com/v3"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &FlutterwaveGateway{http: client, logger: logger}
}

type fwEnvelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type fwInitData struct {
	Link string `json:"link"`
}

type fwTransaction struct {
	ID          int64           `json:"id"`
	TxRef       string          `json:"tx_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
}

func (g *FlutterwaveGateway) Initialize(ctx context.Context, req InitRequest) (InitResult, error) {
	body := map[string]any{
		"tx_ref":       req.TxRef,
		"amount":       req.Amount.String(),
		"currency":     req.Currency,
		"redirect_url": req.RedirectURL,
		"customer": map[string]string{
			"email":       req.Customer.Email,
			"name":        req.Customer.Name,
			"phonenumber": req.Customer.Phone,
		},
		"customizations": map[string]string{"title": req.Title},
	}
	var out fwEnvelope[fwInitData]
	resp, err := g.http.R().SetContext(ctx).SetBody(body).SetResult(&out).SetError(&out).Post("/payments")
	if err != nil {
		g.logger.Error("flutterwave initialize failed", zap.Error(err), zap.String("tx_ref", req.TxRef))
		return InitResult{}, fmt.Errorf("flutterwave: %w", err)
	}
	if resp.IsError() || out.Status != "success" {
		return InitResult{}, fmt.Errorf("flutterwave: initialize status %d: %s", resp.StatusCode(), out.Message)
	}
	return InitResult{RedirectURL: out.Data.Link, Reference: req.TxRef}, nil
}

func (g *FlutterwaveGateway) Verify(ctx context.Context, transactionID string) (Verification, error) {
	var out fwEnvelope[fwTransaction]
	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("id", transactionID).
		SetResult(&out).
		SetError(&out).
		Get("/transactions/{id}/verify")
	if err != nil {
		g.logger.Error("flutterwave verify failed", zap.Error(err), zap.String("transaction_id", transactionID))
		return Verification{}, fmt.Errorf("flutterwave: %w", err)
	}
	if resp.IsError() || out.Status != "success" {
		return Verification{}, fmt.Errorf("flutterwave: verify status %d: %s", resp.StatusCode(), out.Message)
	}
	return Verification{
		Status:        out.Data.Status,
		TxRef:         out.Data.TxRef,
		TransactionID: fmt.Sprint(out.Data.ID),
		Amount:        out.Data.Amount,
		Currency:      out.Data.Currency,
		PaymentType:   out.Data.PaymentType,
	}, nil
}

// VerifyWebhookHash compares the verif-hash header with the configured
// secret in constant time.
func VerifyWebhookHash(header, secret string) bool {
	if secret == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}
