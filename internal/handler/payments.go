package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/service"
)

// InitializePayment handles POST /v1/orders/:id/checkout. The response
// carries the gateway URL the customer is redirected to.
func (h *Handler) InitializePayment(c echo.Context) error {
	co, err := h.Svc.Payments.Initialize(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, co)
}

// CreatePayment handles POST /v1/payments for payments recorded by staff
// outside the hosted checkout.
func (h *Handler) CreatePayment(c echo.Context) error {
	var body struct {
		OrderID        string          `json:"orderId"`
		Amount         decimal.Decimal `json:"amount"`
		Currency       string          `json:"currency"`
		TransactionRef string          `json:"transactionRef"`
		ProviderRef    string          `json:"providerRef"`
		PaymentMethod  string          `json:"paymentMethod"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	p, err := h.Svc.Payments.Create(c.Request().Context(), identity(c), service.PaymentInput(body))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdatePaymentStatus handles PUT /v1/payments/:ref/status. A successful
// status is reconciled against the order before it is stored.
func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	var body struct {
		Status        model.PaymentStatus    `json:"status"`
		ProviderRef   string                 `json:"providerRef"`
		Metadata      *model.PaymentMetadata `json:"metadata"`
		FailureReason string                 `json:"failureReason"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	p, err := h.Svc.Payments.UpdateStatus(c.Request().Context(), identity(c), service.StatusUpdate{
		TransactionRef: c.Param("ref"),
		Status:         body.Status,
		ProviderRef:    body.ProviderRef,
		Metadata:       body.Metadata,
		FailureReason:  body.FailureReason,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// VerifyPayment handles POST /v1/payments/:ref/verify, used by the web app
// when the gateway redirects the customer back with a transaction id.
func (h *Handler) VerifyPayment(c echo.Context) error {
	var body struct {
		TransactionID string `json:"transactionId"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	if body.TransactionID == "" {
		return h.fail(c, apperr.Invalid("transactionId is required"))
	}
	p, err := h.Svc.Payments.Verify(c.Request().Context(), identity(c), body.TransactionID, c.Param("ref"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetPayment handles GET /v1/payments/:ref.
func (h *Handler) GetPayment(c echo.Context) error {
	p, err := h.Svc.Payments.GetByTransactionRef(c.Request().Context(), identity(c), c.Param("ref"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListOrderPayments handles GET /v1/orders/:id/payments.
func (h *Handler) ListOrderPayments(c echo.Context) error {
	list, err := h.Svc.Payments.ListByOrder(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// webhookEvent is the part of the gateway notification the backend reads.
// The reported status is never trusted; the transaction is re-verified.
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID    json.Number `json:"id"`
		TxRef string      `json:"tx_ref"`
	} `json:"data"`
}

// PaymentWebhook handles POST /webhooks/payments. Requests without the
// shared verif-hash are rejected; anything else is acknowledged with 200 so
// the gateway stops retrying, unless the gateway itself could not be
// reached, in which case a retry is requested.
func (h *Handler) PaymentWebhook(c echo.Context) error {
	if !provider.VerifyWebhookHash(c.Request().Header.Get("verif-hash"), h.WebhookHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": string(apperr.KindUnauthenticated), "message": "invalid webhook signature"})
	}
	var ev webhookEvent
	if err := json.NewDecoder(c.Request().Body).Decode(&ev); err != nil {
		return h.fail(c, apperr.Invalid("invalid webhook body"))
	}
	if ev.Data.TxRef == "" || ev.Data.ID == "" {
		h.Logger.Info("webhook ignored", zap.String("event", ev.Event))
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	}

	p, err := h.Svc.Payments.ReconcileWebhook(c.Request().Context(), ev.Data.ID.String(), ev.Data.TxRef)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": string(p.Status)})
	case apperr.KindOf(err) == apperr.KindUpstream:
		return h.fail(c, err)
	case apperr.KindOf(err) != "":
		h.Logger.Warn("webhook rejected", zap.String("tx_ref", ev.Data.TxRef), zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"status": "rejected", "reason": string(apperr.KindOf(err))})
	default:
		return h.fail(c, err)
	}
}
