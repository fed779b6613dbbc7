package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

// GatewayActor is the audit actor for changes reported by the payment
// gateway webhook.
const GatewayActor = "system:gateway"

const gatewayName = "flutterwave"

type PaymentService struct{ *core }

// Checkout is the result of starting a hosted payment.
type Checkout struct {
	Payment     model.Payment `json:"payment"`
	RedirectURL string        `json:"redirectUrl"`
	Reference   string        `json:"reference"`
}

// Initialize starts a gateway checkout for the order's total. Only the
// order's customer may pay, and only while the order is unpaid.
func (s *PaymentService) Initialize(ctx context.Context, id *auth.Identity, orderID string) (Checkout, error) {
	var out Checkout
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if o.CustomerID != c.ID() {
			return apperr.Forbidden("only the customer can pay for an order")
		}
		if o.PaymentStatus == model.PaymentPaid {
			return apperr.Conflict("order is already paid")
		}
		if o.Status == model.OrderCancelled || o.Status == model.OrderRefunded {
			return apperr.Conflict("order is %s", o.Status)
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.PaymentInitialize); err != nil {
			return err
		}
		if s.Gateway == nil {
			return apperr.Upstream(gatewayName, errGatewayUnset)
		}
		txRef := "TXN-" + uuid.NewString()
		res, err := s.Gateway.Initialize(ctx, provider.InitRequest{
			TxRef:       txRef,
			Amount:      o.Pricing.Total,
			Currency:    o.Pricing.Currency,
			Customer:    provider.Customer{Email: c.Account.Email, Name: c.Account.Name, Phone: c.Account.Phone},
			RedirectURL: strings.TrimRight(s.AppURL, "/") + "/orders/" + o.ID + "/payment",
			Title:       "Order " + o.OrderNumber,
		})
		if err != nil {
			return apperr.Upstream(gatewayName, err)
		}
		now := s.nowMs()
		p := model.Payment{
			ID:             ids.New(),
			OrderID:        o.ID,
			CustomerID:     o.CustomerID,
			TenantID:       o.TenantID,
			Amount:         o.Pricing.Total,
			Currency:       o.Pricing.Currency,
			PaymentMethod:  "card",
			Provider:       gatewayName,
			TransactionRef: txRef,
			ProviderRef:    res.Reference,
			Status:         model.PaymentPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repository.Payments(tx).Insert(ctx, p); err != nil {
			return storeErr(err, "payment")
		}
		out = Checkout{Payment: p, RedirectURL: res.RedirectURL, Reference: res.Reference}
		return s.record(ctx, tx, audit.Entry{
			TenantID:   p.TenantID,
			ActorID:    c.ID(),
			Action:     audit.PaymentCreate,
			TargetType: "payment",
			TargetID:   p.ID,
			Metadata:   map[string]any{"orderId": o.ID, "amount": p.Amount.String(), "currency": p.Currency},
		})
	})
	return out, err
}

type PaymentInput struct {
	OrderID        string
	Amount         decimal.Decimal
	Currency       string
	TransactionRef string
	ProviderRef    string
	PaymentMethod  string
}

// Create records a payment attempt made outside the hosted checkout.
// Staff only.
func (s *PaymentService) Create(ctx context.Context, id *auth.Identity, in PaymentInput) (model.Payment, error) {
	var out model.Payment
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), in.OrderID, "order")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, o.TenantID); err != nil {
			return err
		}
		if !in.Amount.IsPositive() || in.Currency == "" || strings.TrimSpace(in.TransactionRef) == "" {
			return apperr.Invalid("amount, currency and transaction reference are required")
		}
		now := s.nowMs()
		p := model.Payment{
			ID:             ids.New(),
			OrderID:        o.ID,
			CustomerID:     o.CustomerID,
			TenantID:       o.TenantID,
			Amount:         in.Amount,
			Currency:       in.Currency,
			PaymentMethod:  in.PaymentMethod,
			Provider:       gatewayName,
			TransactionRef: in.TransactionRef,
			ProviderRef:    in.ProviderRef,
			Status:         model.PaymentPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repository.Payments(tx).Insert(ctx, p); err != nil {
			return storeErr(err, "payment")
		}
		out = p
		return s.record(ctx, tx, audit.Entry{
			TenantID:   p.TenantID,
			ActorID:    c.ID(),
			Action:     audit.PaymentCreate,
			TargetType: "payment",
			TargetID:   p.ID,
			Metadata:   map[string]any{"orderId": o.ID, "amount": p.Amount.String(), "currency": p.Currency},
		})
	})
	return out, err
}

// StatusUpdate is a requested payment status change.
type StatusUpdate struct {
	TransactionRef string
	Status         model.PaymentStatus
	ProviderRef    string
	Metadata       *model.PaymentMetadata
	FailureReason  string
}

// UpdateStatus applies a status change requested by tenant staff.
func (s *PaymentService) UpdateStatus(ctx context.Context, id *auth.Identity, u StatusUpdate) (model.Payment, error) {
	var out model.Payment
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		p, err := repository.Payments(tx).Find(ctx, repository.ByTransactionRef, u.TransactionRef)
		if err != nil {
			return storeErr(err, "payment")
		}
		if err := auth.RequireStaff(c, p.TenantID); err != nil {
			return err
		}
		out, err = s.reconcile(ctx, tx, c.ID(), p, u)
		return err
	})
	return out, err
}

// Verify asks the gateway for the outcome of transactionID and applies it
// to the payment with txRef. The order's customer or tenant staff may ask.
func (s *PaymentService) Verify(ctx context.Context, id *auth.Identity, transactionID, txRef string) (model.Payment, error) {
	check := func(tx repository.Tx, c auth.Caller) (model.Payment, error) {
		p, err := repository.Payments(tx).Find(ctx, repository.ByTransactionRef, txRef)
		if err != nil {
			return p, storeErr(err, "payment")
		}
		return p, auth.RequireSelfOrRole(c, p.CustomerID, p.TenantID, auth.StaffRoles...)
	}
	if err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		_, err := check(tx, c)
		return err
	}); err != nil {
		return model.Payment{}, err
	}
	u, err := s.verifyWithGateway(ctx, transactionID, txRef)
	if err != nil {
		return model.Payment{}, err
	}
	var out model.Payment
	err = s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		p, err := check(tx, c)
		if err != nil {
			return err
		}
		out, err = s.reconcile(ctx, tx, c.ID(), p, u)
		return err
	})
	return out, err
}

// ReconcileWebhook applies a gateway notification. The caller has already
// authenticated the webhook; the change is attributed to GatewayActor.
func (s *PaymentService) ReconcileWebhook(ctx context.Context, transactionID, txRef string) (model.Payment, error) {
	u, err := s.verifyWithGateway(ctx, transactionID, txRef)
	if err != nil {
		return model.Payment{}, err
	}
	var out model.Payment
	err = s.Store.InTx(ctx, func(tx repository.Tx) error {
		p, err := repository.Payments(tx).Find(ctx, repository.ByTransactionRef, txRef)
		if err != nil {
			return storeErr(err, "payment")
		}
		out, err = s.reconcile(ctx, tx, GatewayActor, p, u)
		return err
	})
	return out, err
}

func (s *PaymentService) verifyWithGateway(ctx context.Context, transactionID, txRef string) (StatusUpdate, error) {
	if s.Gateway == nil {
		return StatusUpdate{}, apperr.Upstream(gatewayName, errGatewayUnset)
	}
	v, err := s.Gateway.Verify(ctx, transactionID)
	if err != nil {
		return StatusUpdate{}, apperr.Upstream(gatewayName, err)
	}
	if v.TxRef != txRef {
		return StatusUpdate{}, apperr.Conflict("transaction %s does not belong to %s", transactionID, txRef)
	}
	return StatusUpdate{
		TransactionRef: txRef,
		Status:         gatewayStatus(v.Status),
		ProviderRef:    v.TransactionID,
		Metadata:       &model.PaymentMetadata{Amount: v.Amount, Currency: v.Currency, PaymentType: v.PaymentType},
		FailureReason:  "gateway reported " + v.Status,
	}, nil
}

func gatewayStatus(s string) model.PaymentStatus {
	switch strings.ToLower(s) {
	case "successful", "success", "completed":
		return model.PaymentSuccessful
	case "failed":
		return model.PaymentFailed
	case "cancelled":
		return model.PaymentCancelled
	}
	return model.PaymentProcessing
}

// reconcile applies u to p. A successful status is only kept when the
// reported amount and currency equal the order total exactly; otherwise
// the payment is stored as failed and the order is left alone.
func (s *PaymentService) reconcile(ctx context.Context, tx repository.Tx, actorID string, p model.Payment, u StatusUpdate) (model.Payment, error) {
	if !u.Status.Valid() {
		return p, apperr.Invalid("unknown payment status %q", u.Status)
	}
	prev := p.Status
	now := s.nowMs()
	if u.ProviderRef != "" {
		p.ProviderRef = u.ProviderRef
	}
	if u.Metadata != nil {
		p.Metadata = u.Metadata
	}

	applied := u.Status
	orderClosed := false
	switch {
	case u.Status == model.PaymentSuccessful && prev == model.PaymentSuccessful:
		// already reconciled
	case u.Status == model.PaymentSuccessful:
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, p.OrderID, "order")
		if err != nil {
			return p, err
		}
		if u.Metadata.Matches(o.Pricing) {
			ts := now
			p.PaidAt = &ts
			p.FailureReason = ""
			if o.Status.Terminal() {
				// closed orders are not rewritten; the payment still records the money
				orderClosed = true
				s.Logger.Warn("payment settled on closed order",
					zap.String("transaction_ref", p.TransactionRef),
					zap.String("order_id", o.ID),
					zap.String("order_status", string(o.Status)),
				)
				break
			}
			o.MarkPaid(actorID, now)
			if err := orders.Update(ctx, o); err != nil {
				return p, storeErr(err, "order")
			}
		} else {
			applied = model.PaymentFailed
			p.FailureReason = model.MismatchReason
			obs.ReconciliationMismatches.Inc()
			s.Logger.Warn("payment reconciliation mismatch",
				zap.String("transaction_ref", p.TransactionRef),
				zap.String("order_id", o.ID),
				zap.String("expected", o.Pricing.Total.String()+" "+o.Pricing.Currency),
			)
		}
	case u.Status == model.PaymentFailed:
		p.FailureReason = u.FailureReason
	case u.Status == model.PaymentReversed:
		amt := p.Amount
		ts := now
		p.RefundedAmount = &amt
		p.RefundedAt = &ts
	}
	p.Status = applied
	p.UpdatedAt = now
	if err := repository.Payments(tx).Update(ctx, p); err != nil {
		return p, storeErr(err, "payment")
	}
	e := audit.Entry{
		TenantID:   p.TenantID,
		ActorID:    actorID,
		Action:     audit.PaymentStatus,
		TargetType: "payment",
		TargetID:   p.ID,
		Metadata: map[string]any{
			"from":      string(prev),
			"requested": string(u.Status),
			"to":        string(applied),
		},
	}
	if orderClosed {
		e.Metadata["order_closed"] = true
	}
	return p, s.record(ctx, tx, e)
}

func (s *PaymentService) GetByTransactionRef(ctx context.Context, id *auth.Identity, txRef string) (model.Payment, error) {
	var out model.Payment
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		p, err := repository.Payments(tx).Find(ctx, repository.ByTransactionRef, txRef)
		if err != nil {
			return storeErr(err, "payment")
		}
		if err := auth.RequireSelfOrRole(c, p.CustomerID, p.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *PaymentService) ListByOrder(ctx context.Context, id *auth.Identity, orderID string) ([]model.Payment, error) {
	var out []model.Payment
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, o.CustomerID, o.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		out, err = repository.Payments(tx).List(ctx, repository.ByOrder, o.ID)
		return storeErr(err, "payment")
	})
	return out, err
}
