// Package service implements the domain operations. Every exported method
// takes the caller's identity, runs in a single transaction, resolves the
// calling account first and only then loads, checks and mutates records.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/queue"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

// EventPublisher receives order events after the order commits.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error
}

// Deps are the collaborators shared by all services. Events may be nil.
type Deps struct {
	Store   repository.Store
	Limiter *ratelimit.Limiter
	Audit   *audit.Recorder
	Mailer  provider.Mailer
	Gateway provider.Gateway
	Media   provider.MediaStorage
	Events  EventPublisher
	Logger  *zap.Logger
	Now     func() time.Time
	// AppURL is the public web app origin used in e-mail and redirect links.
	AppURL string
}

// Services groups the domain modules.
type Services struct {
	Accounts      *AccountService
	Tenants       *TenantService
	Styles        *StyleService
	SavedStyles   *SavedStyleService
	Orders        *OrderService
	Assignments   *AssignmentService
	Payments      *PaymentService
	Invitations   *InvitationService
	Conversations *ConversationService
	Messages      *MessageService
	Notifications *NotificationService
	Huddles       *HuddleService
	Reviews       *ReviewService
	Portfolio     *PortfolioService
	Media         *MediaService
	Audit         *AuditService
}

// New wires every module over d.
func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.New(ratelimit.DefaultBudgets(), d.Now)
	}
	if d.Audit == nil {
		d.Audit = audit.NewRecorder(d.Logger, d.Now)
	}
	c := &core{Deps: d}
	return &Services{
		Accounts:      &AccountService{c},
		Tenants:       &TenantService{c},
		Styles:        &StyleService{c},
		SavedStyles:   &SavedStyleService{c},
		Orders:        &OrderService{c},
		Assignments:   &AssignmentService{c},
		Payments:      &PaymentService{c},
		Invitations:   &InvitationService{c},
		Conversations: &ConversationService{c},
		Messages:      &MessageService{c},
		Notifications: &NotificationService{c},
		Huddles:       &HuddleService{c},
		Reviews:       &ReviewService{c},
		Portfolio:     &PortfolioService{c},
		Media:         &MediaService{c},
		Audit:         &AuditService{c},
	}
}

var (
	errGatewayUnset = errors.New("payment gateway not configured")
	errMailerUnset  = errors.New("mailer not configured")
	errMediaUnset   = errors.New("media storage not configured")
)

type core struct {
	Deps
}

func (c *core) nowMs() int64 { return c.Now().UnixMilli() }

// write runs fn in a read-write transaction after resolving the caller.
func (c *core) write(ctx context.Context, id *auth.Identity, fn func(tx repository.Tx, caller auth.Caller) error) error {
	return c.Store.InTx(ctx, func(tx repository.Tx) error {
		caller, err := auth.ResolveCaller(ctx, tx, id)
		if err != nil {
			return err
		}
		return fn(tx, caller)
	})
}

// read is write for read-only operations.
func (c *core) read(ctx context.Context, id *auth.Identity, fn func(tx repository.Tx, caller auth.Caller) error) error {
	return c.Store.View(ctx, func(tx repository.Tx) error {
		caller, err := auth.ResolveCaller(ctx, tx, id)
		if err != nil {
			return err
		}
		return fn(tx, caller)
	})
}

func (c *core) record(ctx context.Context, tx repository.Tx, e audit.Entry) error {
	return c.Audit.Record(ctx, tx, e)
}

func (c *core) publish(ctx context.Context, events []queue.OrderEvent) {
	if c.Events == nil {
		return
	}
	for _, ev := range events {
		_ = c.Events.PublishOrderEvent(ctx, ev)
	}
}

// load fetches a record by id, turning a miss into NotFound(resource).
func load[T any](ctx context.Context, t repository.Table[T], id, resource string) (T, error) {
	v, err := t.Get(ctx, id)
	if err != nil {
		return v, storeErr(err, resource)
	}
	return v, nil
}

// storeErr maps repository errors onto the service error kinds.
func storeErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s already exists", resource)
	}
	return fmt.Errorf("%s: %w", resource, err)
}

// filterCap keeps the items accepted by keep (all when keep is nil) and
// then truncates to limit when limit > 0.
func filterCap[T any](items []T, keep func(T) bool, limit int) []T {
	out := items
	if keep != nil {
		out = make([]T, 0, len(items))
		for _, it := range items {
			if keep(it) {
				out = append(out, it)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// orderAccess allows the order's customer, workers of the order's tenant
// assigned to it, and staff of the order's tenant.
func orderAccess(c auth.Caller, o model.Order) error {
	if c.ID() == o.CustomerID {
		return nil
	}
	if o.IsAssigned(c.ID()) {
		return auth.RequireSameTenant(o.TenantID, c.TenantID())
	}
	return auth.RequireStaff(c, o.TenantID)
}

// notify inserts an in-app notification.
func (c *core) notify(ctx context.Context, tx repository.Tx, n model.Notification) error {
	_, err := c.insertNotification(ctx, tx, n)
	return err
}

func (c *core) insertNotification(ctx context.Context, tx repository.Tx, n model.Notification) (model.Notification, error) {
	now := c.nowMs()
	n.ID = ids.New()
	n.CreatedAt, n.UpdatedAt = now, now
	if n.Priority == "" {
		n.Priority = model.PriorityNotifyNormal
	}
	return n, storeErr(repository.Notifications(tx).Insert(ctx, n), "notification")
}
