package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/stylehub/internal/apperr"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// rank orders the forward path; exits have no rank.
var orderRank = map[OrderStatus]int{
	OrderPending:    1,
	OrderConfirmed:  2,
	OrderInProgress: 3,
	OrderCompleted:  4,
	OrderDelivered:  5,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCancelled, OrderRefunded:
		return true
	}
	_, ok := orderRank[s]
	return ok
}

// Terminal reports whether the order accepts no further lifecycle changes.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled || s == OrderRefunded
}

// PaymentState is the order-level view of money received.
type PaymentState string

const (
	PaymentUnpaid   PaymentState = "unpaid"
	PaymentPartial  PaymentState = "partial"
	PaymentPaid     PaymentState = "paid"
	PaymentRefunded PaymentState = "refunded"
)

func (s PaymentState) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Stage is a production step.
type Stage string

const (
	StageCutting   Stage = "cutting"
	StageSewing    Stage = "sewing"
	StageFinishing Stage = "finishing"
)

func (s Stage) Valid() bool {
	return s == StageCutting || s == StageSewing || s == StageFinishing
}

// StageStatus is the state of one production stage.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

func (s StageStatus) Valid() bool {
	return s == StagePending || s == StageInProgress || s == StageCompleted
}

// StageProgress tracks one stage. StartedAt is written once.
type StageProgress struct {
	Status      StageStatus `json:"status"`
	StartedAt   *int64      `json:"startedAt,omitempty"`
	CompletedAt *int64      `json:"completedAt,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Images      []string    `json:"images,omitempty"`
}

// Progress holds the three fixed stages.
type Progress struct {
	Cutting   StageProgress `json:"cutting"`
	Sewing    StageProgress `json:"sewing"`
	Finishing StageProgress `json:"finishing"`
}

// NewProgress returns progress with every stage pending.
func NewProgress() Progress {
	return Progress{
		Cutting:   StageProgress{Status: StagePending},
		Sewing:    StageProgress{Status: StagePending},
		Finishing: StageProgress{Status: StagePending},
	}
}

// Stage returns the mutable progress for s, or nil for an unknown stage.
func (p *Progress) Stage(s Stage) *StageProgress {
	switch s {
	case StageCutting:
		return &p.Cutting
	case StageSewing:
		return &p.Sewing
	case StageFinishing:
		return &p.Finishing
	}
	return nil
}

// AllPending reports whether no stage has started.
func (p Progress) AllPending() bool {
	return p.Cutting.Status == StagePending && p.Sewing.Status == StagePending && p.Finishing.Status == StagePending
}

// Pricing is the breakdown recorded when the order is placed.
type Pricing struct {
	BasePrice        decimal.Decimal `json:"basePrice"`
	CustomizationFee decimal.Decimal `json:"customizationFee"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	Discount         decimal.Decimal `json:"discount"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
}

// Sum sets Total from the other components.
func (p *Pricing) Sum() {
	p.Total = p.BasePrice.Add(p.CustomizationFee).Add(p.DeliveryFee).Add(p.Tax).Sub(p.Discount)
}

// DeliveryStatus tracks the shipment of a finished order.
type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "pending"
	DeliveryPacked         DeliveryStatus = "packed"
	DeliveryInTransit      DeliveryStatus = "in_transit"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
	DeliveryFailed         DeliveryStatus = "failed"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryPacked, DeliveryInTransit, DeliveryOutForDelivery, DeliveryDelivered, DeliveryFailed:
		return true
	}
	return false
}

type Delivery struct {
	Address        Address        `json:"address"`
	Phone          string         `json:"phone"`
	AlternatePhone string         `json:"alternatePhone,omitempty"`
	Instructions   string         `json:"instructions,omitempty"`
	EstimatedDate  *int64         `json:"estimatedDate,omitempty"`
	ActualDate     *int64         `json:"actualDate,omitempty"`
	Status         DeliveryStatus `json:"status"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	CourierService string         `json:"courierService,omitempty"`
}

// TimelineEvent is one append-only history line of an order.
type TimelineEvent struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
	Actor       string `json:"actor,omitempty"`
}

type Rating struct {
	Value     int      `json:"value"`
	Review    string   `json:"review,omitempty"`
	Images    []string `json:"images,omitempty"`
	CreatedAt int64    `json:"createdAt"`
}

// Order is a customer's purchase of a style from a tenant.
type Order struct {
	ID                    string             `json:"id"`
	OrderNumber           string             `json:"orderNumber"`
	CustomerID            string             `json:"customerId"`
	TenantID              string             `json:"tenantId"`
	StyleID               string             `json:"styleId"`
	Measurements          map[string]float64 `json:"measurements"`
	AdditionalNotes       string             `json:"additionalNotes,omitempty"`
	CustomizationRequests string             `json:"customizationRequests,omitempty"`
	Pricing               Pricing            `json:"pricing"`
	Status                OrderStatus        `json:"status"`
	PaymentStatus         PaymentState       `json:"paymentStatus"`
	CurrentStage          *Stage             `json:"currentStage,omitempty"`
	Progress              Progress           `json:"progress"`
	AssignedWorkers       []string           `json:"assignedWorkers"`
	AssignedBy            string             `json:"assignedBy,omitempty"`
	AssignedAt            *int64             `json:"assignedAt,omitempty"`
	Delivery              Delivery           `json:"delivery"`
	Timeline              []TimelineEvent    `json:"timeline"`
	Rating                *Rating            `json:"rating,omitempty"`
	CreatedAt             int64              `json:"createdAt"`
	UpdatedAt             int64              `json:"updatedAt"`
}

// AddEvent appends to the timeline.
func (o *Order) AddEvent(event, description, actor string, at int64) {
	o.Timeline = append(o.Timeline, TimelineEvent{Event: event, Description: description, Timestamp: at, Actor: actor})
}

// SetStatus moves the order along its lifecycle. Forward moves follow
// pending → confirmed → in_progress → completed → delivered and may skip
// steps; cancelled and refunded are reachable from any open status.
// Entering in_progress with no stage started starts cutting.
func (o *Order) SetStatus(next OrderStatus, actor string, at int64) error {
	if !next.Valid() {
		return apperr.Invalid("unknown order status %q", next)
	}
	if o.Status.Terminal() {
		return apperr.Conflict("order is %s and can no longer change", o.Status)
	}
	if next != OrderCancelled && next != OrderRefunded && orderRank[next] <= orderRank[o.Status] {
		return apperr.Conflict("cannot move order from %s to %s", o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	o.AddEvent("order_"+string(next), fmt.Sprintf("Order status changed to %s", next), actor, at)
	if next == OrderInProgress && o.Progress.AllPending() {
		o.applyStage(StageCutting, StageInProgress, "", nil, actor, at)
	}
	return nil
}

// SetStageProgress records a production stage update. StartedAt is kept
// from the first start; CompletedAt is refreshed on each completion.
// Starting work on a pending or confirmed order moves it to in_progress.
// Resetting the last started stage of a running order is a conflict.
func (o *Order) SetStageProgress(stage Stage, status StageStatus, notes string, images []string, actor string, at int64) error {
	if !stage.Valid() {
		return apperr.Invalid("unknown stage %q", stage)
	}
	if !status.Valid() {
		return apperr.Invalid("unknown stage status %q", status)
	}
	if o.Status.Terminal() {
		return apperr.Conflict("order is %s and can no longer change", o.Status)
	}
	if status == StagePending && (o.Status == OrderInProgress || o.Status == OrderCompleted) {
		next := o.Progress
		next.Stage(stage).Status = StagePending
		if next.AllPending() {
			return apperr.Conflict("an order that is %s must keep a stage started", o.Status)
		}
	}
	o.applyStage(stage, status, notes, images, actor, at)
	if status != StagePending && (o.Status == OrderPending || o.Status == OrderConfirmed) {
		o.Status = OrderInProgress
		o.AddEvent("order_in_progress", "Order status changed to in_progress", actor, at)
	}
	o.UpdatedAt = at
	return nil
}

func (o *Order) applyStage(stage Stage, status StageStatus, notes string, images []string, actor string, at int64) {
	sp := o.Progress.Stage(stage)
	sp.Status = status
	if status == StageInProgress && sp.StartedAt == nil {
		ts := at
		sp.StartedAt = &ts
	}
	if status == StageCompleted {
		ts := at
		sp.CompletedAt = &ts
	}
	if notes != "" {
		sp.Notes = notes
	}
	if images != nil {
		sp.Images = images
	}
	if status == StageCompleted {
		o.CurrentStage = nil
	} else {
		s := stage
		o.CurrentStage = &s
	}
	o.AddEvent(fmt.Sprintf("progress_%s_%s", stage, status), fmt.Sprintf("%s stage is %s", stage, status), actor, at)
}

// AssignWorker adds workerID to the assigned set. It does not look at
// the order status.
func (o *Order) AssignWorker(workerID, by string, at int64) {
	found := false
	for _, w := range o.AssignedWorkers {
		if w == workerID {
			found = true
			break
		}
	}
	if !found {
		o.AssignedWorkers = append(o.AssignedWorkers, workerID)
	}
	o.AssignedBy = by
	ts := at
	o.AssignedAt = &ts
	o.UpdatedAt = at
	o.AddEvent("worker_assigned", "A worker was assigned to the order", by, at)
}

// IsAssigned reports whether workerID works on the order.
func (o *Order) IsAssigned(workerID string) bool {
	for _, w := range o.AssignedWorkers {
		if w == workerID {
			return true
		}
	}
	return false
}

// MarkPaid records a reconciled payment.
func (o *Order) MarkPaid(actor string, at int64) {
	o.PaymentStatus = PaymentPaid
	o.UpdatedAt = at
	o.AddEvent("payment_received", "Payment received", actor, at)
}

// AttachRating stores the customer's rating. Allowed on completed and
// delivered orders only, once.
func (o *Order) AttachRating(r Rating) error {
	if o.Status != OrderCompleted && o.Status != OrderDelivered {
		return apperr.Conflict("order must be completed before it can be rated")
	}
	if o.Rating != nil {
		return apperr.Conflict("order already rated")
	}
	if r.Value < 1 || r.Value > 5 {
		return apperr.Invalid("rating must be between 1 and 5")
	}
	o.Rating = &r
	o.UpdatedAt = r.CreatedAt
	return nil
}
