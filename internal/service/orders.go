package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/queue"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type OrderService struct{ *core }

type OrderInput struct {
	StyleID               string
	Measurements          map[string]float64
	AdditionalNotes       string
	CustomizationRequests string
	CustomizationFee      decimal.Decimal
	Delivery              model.Delivery
}

// newOrderNumber returns ORD-<base36 ms>-<random>, upper-cased.
func newOrderNumber(nowMs int64) string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strings.ToUpper("ORD-" + strconv.FormatInt(nowMs, 36) + "-" + r)
}

// clampFee bounds fee to the tenant's customization range.
func clampFee(fee decimal.Decimal, r model.FeeRange) decimal.Decimal {
	if fee.LessThan(r.Min) {
		return r.Min
	}
	if fee.GreaterThan(r.Max) {
		return r.Max
	}
	return fee
}

// Create places an order for the caller against an active style.
func (s *OrderService) Create(ctx context.Context, id *auth.Identity, in OrderInput) (model.Order, error) {
	var (
		out    model.Order
		events []queue.OrderEvent
	)
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.OrderCreate); err != nil {
			return err
		}
		styles := repository.Styles(tx)
		st, err := load(ctx, styles, in.StyleID, "style")
		if err != nil {
			return err
		}
		if !st.IsActive {
			return apperr.Conflict("style is not available for ordering")
		}
		tenant, err := load(ctx, repository.Tenants(tx), st.TenantID, "tenant")
		if err != nil {
			return err
		}
		if !tenant.IsActive {
			return apperr.Conflict("tenant is not accepting orders")
		}
		for k, v := range in.Measurements {
			if v < 0 {
				return apperr.Invalid("measurement %s must not be negative", k)
			}
		}

		now := s.nowMs()
		pricing := model.Pricing{
			BasePrice:        st.BasePrice,
			CustomizationFee: clampFee(in.CustomizationFee, tenant.Settings.CustomizationFeeRange),
			DeliveryFee:      tenant.Settings.DeliveryFee,
			Discount:         decimal.Zero,
			Tax:              decimal.Zero,
			Currency:         st.Currency,
		}
		if pricing.Currency == "" {
			pricing.Currency = tenant.Settings.Currency
		}
		pricing.Sum()

		delivery := in.Delivery
		delivery.Status = model.DeliveryPending
		delivery.ActualDate = nil

		o := model.Order{
			ID:                    ids.New(),
			OrderNumber:           newOrderNumber(now),
			CustomerID:            c.ID(),
			TenantID:              st.TenantID,
			StyleID:               st.ID,
			Measurements:          in.Measurements,
			AdditionalNotes:       in.AdditionalNotes,
			CustomizationRequests: in.CustomizationRequests,
			Pricing:               pricing,
			Status:                model.OrderPending,
			PaymentStatus:         model.PaymentUnpaid,
			Progress:              model.NewProgress(),
			AssignedWorkers:       []string{},
			Delivery:              delivery,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		o.AddEvent("order_created", "Order placed", c.ID(), now)
		if err := repository.Orders(tx).Insert(ctx, o); err != nil {
			return storeErr(err, "order")
		}

		if err := s.linkCustomer(ctx, tx, o, now); err != nil {
			return err
		}
		st.Stats.Orders++
		st.UpdatedAt = now
		if err := styles.Update(ctx, st); err != nil {
			return storeErr(err, "style")
		}
		acc := c.Account
		acc.Stats.TotalOrders++
		acc.Stats.TotalSpent = acc.Stats.TotalSpent.Add(pricing.Total)
		acc.UpdatedAt = now
		if err := repository.Accounts(tx).Update(ctx, acc); err != nil {
			return storeErr(err, "account")
		}
		if err := s.notify(ctx, tx, model.Notification{
			UserID:  c.ID(),
			Type:    "order_created",
			Title:   "Order placed",
			Message: fmt.Sprintf("Your order %s with %s has been placed.", o.OrderNumber, tenant.Name),
			OrderID: o.ID,
			StyleID: st.ID,
		}); err != nil {
			return err
		}
		out = o
		events = append(events, orderEvent(queue.OrderCreated, o, tenant, acc, now))
		return nil
	})
	if err == nil {
		s.publish(ctx, events)
	}
	return out, err
}

func (s *OrderService) linkCustomer(ctx context.Context, tx repository.Tx, o model.Order, now int64) error {
	links := repository.CustomerLinks(tx)
	l, err := links.Find(ctx, repository.ByCustomerTenant, o.CustomerID, o.TenantID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		l = model.CustomerLink{
			ID:           ids.New(),
			CustomerID:   o.CustomerID,
			TenantID:     o.TenantID,
			FirstOrderID: o.ID,
			CreatedAt:    now,
		}
	case err != nil:
		return storeErr(err, "customer link")
	}
	l.RecordOrder(o.Pricing.Total, now)
	l.UpdatedAt = now
	return storeErr(links.Upsert(ctx, l), "customer link")
}

func orderEvent(typ string, o model.Order, t model.Tenant, customer model.Account, at int64) queue.OrderEvent {
	return queue.OrderEvent{
		Type:          typ,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TenantID:      o.TenantID,
		TenantName:    t.Name,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Status:        string(o.Status),
		Total:         o.Pricing.Total.StringFixed(2),
		Currency:      o.Pricing.Currency,
		OccurredAt:    time.UnixMilli(at).UTC().Format(time.RFC3339),
	}
}

func (s *OrderService) Get(ctx context.Context, id *auth.Identity, orderID string) (model.Order, error) {
	var out model.Order
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if err := orderAccess(c, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func (s *OrderService) GetByNumber(ctx context.Context, id *auth.Identity, number string) (model.Order, error) {
	var out model.Order
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := repository.Orders(tx).Find(ctx, repository.ByNumber, strings.ToUpper(number))
		if err != nil {
			return storeErr(err, "order")
		}
		if err := orderAccess(c, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

// ListByCustomer returns a customer's orders. The customer sees all of
// them; staff see only those placed with their own tenant.
func (s *OrderService) ListByCustomer(ctx context.Context, id *auth.Identity, customerID string, status *model.OrderStatus, limit int) ([]model.Order, error) {
	var out []model.Order
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		self := c.ID() == customerID
		if !self {
			if err := auth.RequireStaff(c, c.TenantID()); err != nil {
				return err
			}
		}
		all, err := repository.Orders(tx).List(ctx, repository.ByCustomer, customerID)
		if err != nil {
			return storeErr(err, "order")
		}
		out = filterCap(all, func(o model.Order) bool {
			if !self && o.TenantID != c.TenantID() {
				return false
			}
			return status == nil || o.Status == *status
		}, limit)
		return nil
	})
	return out, err
}

// OrderFilter narrows a tenant's order list.
type OrderFilter struct {
	Status        *model.OrderStatus
	PaymentStatus *model.PaymentState
	Limit         int
}

func (s *OrderService) ListByTenant(ctx context.Context, id *auth.Identity, tenantID string, f OrderFilter) ([]model.Order, error) {
	var out []model.Order
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireStaff(c, tenantID); err != nil {
			return err
		}
		all, err := repository.Orders(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "order")
		}
		out = filterCap(all, func(o model.Order) bool {
			if f.Status != nil && o.Status != *f.Status {
				return false
			}
			return f.PaymentStatus == nil || o.PaymentStatus == *f.PaymentStatus
		}, f.Limit)
		return nil
	})
	return out, err
}

// ListByWorker returns the orders a worker has assignments on.
func (s *OrderService) ListByWorker(ctx context.Context, id *auth.Identity, workerID string, status *model.OrderStatus, limit int) ([]model.Order, error) {
	var out []model.Order
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		worker, err := load(ctx, repository.Accounts(tx), workerID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, worker.ID, worker.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		as, err := repository.Assignments(tx).List(ctx, repository.ByWorker, worker.ID)
		if err != nil {
			return storeErr(err, "assignment")
		}
		orders := repository.Orders(tx)
		seen := make(map[string]bool, len(as))
		var all []model.Order
		for _, a := range as {
			if seen[a.OrderID] {
				continue
			}
			seen[a.OrderID] = true
			o, err := orders.Get(ctx, a.OrderID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return storeErr(err, "order")
			}
			all = append(all, o)
		}
		var keep func(model.Order) bool
		if status != nil {
			keep = func(o model.Order) bool { return o.Status == *status }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

// UpdateStatus moves an order through its lifecycle. Staff only.
func (s *OrderService) UpdateStatus(ctx context.Context, id *auth.Identity, orderID string, next model.OrderStatus) (model.Order, error) {
	var (
		out    model.Order
		events []queue.OrderEvent
	)
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, orderID, "order")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, o.TenantID); err != nil {
			return err
		}
		now := s.nowMs()
		if err := o.SetStatus(next, c.ID(), now); err != nil {
			return err
		}
		if err := orders.Update(ctx, o); err != nil {
			return storeErr(err, "order")
		}
		tenant, err := load(ctx, repository.Tenants(tx), o.TenantID, "tenant")
		if err != nil {
			return err
		}
		customer, err := load(ctx, repository.Accounts(tx), o.CustomerID, "account")
		if err != nil {
			return err
		}
		if next == model.OrderCompleted {
			if err := s.recordCompletion(ctx, tx, o, &tenant, &customer, now); err != nil {
				return err
			}
		}
		if err := s.notify(ctx, tx, model.Notification{
			UserID:   o.CustomerID,
			Type:     "order_status",
			Title:    "Order updated",
			Message:  fmt.Sprintf("Order %s is now %s.", o.OrderNumber, next),
			OrderID:  o.ID,
			SenderID: c.ID(),
		}); err != nil {
			return err
		}
		out = o
		events = append(events, orderEvent(queue.OrderStatusChanged, o, tenant, customer, now))
		return nil
	})
	if err == nil {
		s.publish(ctx, events)
	}
	return out, err
}

func (s *OrderService) recordCompletion(ctx context.Context, tx repository.Tx, o model.Order, t *model.Tenant, customer *model.Account, now int64) error {
	t.Stats.CompletedOrders++
	t.UpdatedAt = now
	if err := repository.Tenants(tx).Update(ctx, *t); err != nil {
		return storeErr(err, "tenant")
	}
	customer.Stats.CompletedOrders++
	customer.UpdatedAt = now
	if err := repository.Accounts(tx).Update(ctx, *customer); err != nil {
		return storeErr(err, "account")
	}
	links := repository.CustomerLinks(tx)
	l, err := links.Find(ctx, repository.ByCustomerTenant, o.CustomerID, o.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeErr(err, "customer link")
	}
	l.Stats.CompletedOrders++
	l.UpdatedAt = now
	return storeErr(links.Update(ctx, l), "customer link")
}

// ProgressInput is one stage update.
type ProgressInput struct {
	Stage  model.Stage
	Status model.StageStatus
	Notes  string
	Images []string
}

// UpdateProgress records a production stage change. Allowed for workers
// assigned to the order and for staff of its tenant.
func (s *OrderService) UpdateProgress(ctx context.Context, id *auth.Identity, orderID string, in ProgressInput) (model.Order, error) {
	var out model.Order
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, orderID, "order")
		if err != nil {
			return err
		}
		if o.IsAssigned(c.ID()) {
			err = auth.RequireSameTenant(o.TenantID, c.TenantID())
		} else {
			err = auth.RequireStaff(c, o.TenantID)
		}
		if err != nil {
			return err
		}
		if err := o.SetStageProgress(in.Stage, in.Status, in.Notes, in.Images, c.ID(), s.nowMs()); err != nil {
			return err
		}
		if err := orders.Update(ctx, o); err != nil {
			return storeErr(err, "order")
		}
		out = o
		return s.notify(ctx, tx, model.Notification{
			UserID:   o.CustomerID,
			Type:     "order_progress",
			Title:    "Production update",
			Message:  fmt.Sprintf("The %s stage of order %s is %s.", in.Stage, o.OrderNumber, in.Status),
			OrderID:  o.ID,
			SenderID: c.ID(),
			Priority: model.PriorityNotifyLow,
		})
	})
	return out, err
}

// DeliveryUpdate changes only the fields that are set.
type DeliveryUpdate struct {
	Status         *model.DeliveryStatus
	TrackingNumber *string
	CourierService *string
	EstimatedDate  *int64
	Instructions   *string
}

func (s *OrderService) UpdateDelivery(ctx context.Context, id *auth.Identity, orderID string, u DeliveryUpdate) (model.Order, error) {
	var out model.Order
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, orderID, "order")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, o.TenantID); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.Conflict("order is %s and can no longer change", o.Status)
		}
		now := s.nowMs()
		if u.Status != nil {
			if !u.Status.Valid() {
				return apperr.Invalid("unknown delivery status %q", *u.Status)
			}
			o.Delivery.Status = *u.Status
			if *u.Status == model.DeliveryDelivered {
				ts := now
				o.Delivery.ActualDate = &ts
			}
			o.AddEvent("delivery_"+string(*u.Status), fmt.Sprintf("Delivery is %s", *u.Status), c.ID(), now)
		}
		setIf(&o.Delivery.TrackingNumber, u.TrackingNumber)
		setIf(&o.Delivery.CourierService, u.CourierService)
		setIf(&o.Delivery.Instructions, u.Instructions)
		if u.EstimatedDate != nil {
			ts := *u.EstimatedDate
			o.Delivery.EstimatedDate = &ts
		}
		o.UpdatedAt = now
		out = o
		return storeErr(orders.Update(ctx, o), "order")
	})
	return out, err
}

// AttachRating lets the customer rate a fulfilled order once.
func (s *OrderService) AttachRating(ctx context.Context, id *auth.Identity, orderID string, value int, review string, images []string) (model.Order, error) {
	var out model.Order
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, orderID, "order")
		if err != nil {
			return err
		}
		if o.CustomerID != c.ID() {
			return apperr.Forbidden("only the customer can rate an order")
		}
		if err := o.AttachRating(model.Rating{Value: value, Review: review, Images: images, CreatedAt: s.nowMs()}); err != nil {
			return err
		}
		out = o
		return storeErr(orders.Update(ctx, o), "order")
	})
	return out, err
}
