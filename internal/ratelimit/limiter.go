// Package ratelimit implements per-actor fixed-window budgets stored in
// the same transaction as the operation they protect.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/repository"
)

// Budget allows Max calls per Window.
type Budget struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

// Action keys.
const (
	InvitationCreate  = "invitation.create"
	InvitationAccept  = "invitation.accept"
	MessageSend       = "message.send"
	StyleSave         = "style.save"
	ReviewCreate      = "review.create"
	PortfolioAdd      = "portfolio.add"
	AssignmentCreate  = "assignment.create"
	HuddleCreate      = "huddle.create"
	OrderCreate       = "order.create"
	PaymentInitialize = "payment.initialize"
	MediaUpload       = "media.upload"
)

// DefaultBudgets returns the built-in budget per action.
func DefaultBudgets() map[string]Budget {
	return map[string]Budget{
		InvitationCreate:  {Window: time.Minute, Max: 10},
		InvitationAccept:  {Window: time.Minute, Max: 5},
		MessageSend:       {Window: time.Minute, Max: 30},
		StyleSave:         {Window: time.Minute, Max: 30},
		ReviewCreate:      {Window: time.Minute, Max: 5},
		PortfolioAdd:      {Window: time.Minute, Max: 10},
		AssignmentCreate:  {Window: time.Minute, Max: 20},
		HuddleCreate:      {Window: time.Minute, Max: 3},
		OrderCreate:       {Window: time.Minute, Max: 10},
		PaymentInitialize: {Window: time.Minute, Max: 5},
		MediaUpload:       {Window: time.Minute, Max: 20},
	}
}

// WindowStart aligns nowMs down to the start of its window.
func WindowStart(nowMs, windowMs int64) int64 {
	return nowMs - nowMs%windowMs
}

// Consume counts one call by actorID against key. The counter is reset
// when nowMs falls in a later window than the stored one. A call made
// when count has reached max fails with RateLimitExceeded and leaves the
// counter untouched.
func Consume(ctx context.Context, counters repository.Table[model.RateLimitCounter], nowMs int64, actorID, key string, windowMs int64, max int) error {
	if windowMs <= 0 || max <= 0 {
		return fmt.Errorf("ratelimit: invalid budget for %s", key)
	}
	start := WindowStart(nowMs, windowMs)
	id := model.CounterID(actorID, key)

	c, err := counters.Get(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c = model.RateLimitCounter{ID: id, ActorID: actorID, Key: key, WindowStart: start}
	case err != nil:
		return fmt.Errorf("ratelimit: load counter: %w", err)
	case c.WindowStart != start:
		c.WindowStart = start
		c.Count = 0
	}
	if c.Count >= max {
		obs.RateLimitRejections.WithLabelValues(key).Inc()
		return apperr.ErrRateLimited
	}
	c.Count++
	if err := counters.Upsert(ctx, c); err != nil {
		return fmt.Errorf("ratelimit: save counter: %w", err)
	}
	return nil
}

// Limiter applies the configured budgets.
type Limiter struct {
	budgets map[string]Budget
	now     func() time.Time
}

// New returns a limiter over budgets. now defaults to time.Now.
func New(budgets map[string]Budget, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{budgets: budgets, now: now}
}

// Allow consumes one unit of the action's budget for actorID inside tx.
// Actions without a budget are not limited.
func (l *Limiter) Allow(ctx context.Context, tx repository.Tx, actorID, action string) error {
	b, ok := l.budgets[action]
	if !ok {
		return nil
	}
	return Consume(ctx, repository.RateLimitCounters(tx), l.now().UnixMilli(), actorID, action, b.Window.Milliseconds(), b.Max)
}

// Budget returns the budget for action.
func (l *Limiter) Budget(action string) (Budget, bool) {
	b, ok := l.budgets[action]
	return b, ok
}
