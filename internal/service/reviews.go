package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type ReviewService struct{ *core }

type ReviewInput struct {
	OrderID string
	Rating  int
	Title   string
	Content string
	Images  []string
	Pros    []string
	Cons    []string
}

// Create posts the customer's review of a fulfilled order. One review per
// order.
func (s *ReviewService) Create(ctx context.Context, id *auth.Identity, in ReviewInput) (model.Review, error) {
	var out model.Review
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), in.OrderID, "order")
		if err != nil {
			return err
		}
		if o.CustomerID != c.ID() {
			return apperr.Forbidden("only the customer can review an order")
		}
		if o.Status != model.OrderCompleted && o.Status != model.OrderDelivered {
			return apperr.Conflict("order must be completed before it can be reviewed")
		}
		if in.Rating < 1 || in.Rating > 5 {
			return apperr.Invalid("rating must be between 1 and 5")
		}
		if strings.TrimSpace(in.Content) == "" {
			return apperr.Invalid("review content is required")
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.ReviewCreate); err != nil {
			return err
		}
		now := s.nowMs()
		r := model.Review{
			ID:         ids.New(),
			OrderID:    o.ID,
			TenantID:   o.TenantID,
			StyleID:    o.StyleID,
			CustomerID: c.ID(),
			Rating:     in.Rating,
			Title:      in.Title,
			Content:    in.Content,
			Images:     in.Images,
			Pros:       in.Pros,
			Cons:       in.Cons,
			IsVerified: true,
			Status:     model.ReviewPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repository.Reviews(tx).Insert(ctx, r); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("order already reviewed")
			}
			return storeErr(err, "review")
		}
		if err := adjustTenant(ctx, tx, o.TenantID, now, func(t *model.Tenant) {
			n := float64(t.Stats.TotalReviews)
			t.Stats.AverageRating = math.Round((t.Stats.AverageRating*n+float64(in.Rating))/(n+1)*100) / 100
			t.Stats.TotalReviews++
		}); err != nil {
			return err
		}
		out = r
		return s.record(ctx, tx, audit.Entry{
			TenantID:   r.TenantID,
			ActorID:    c.ID(),
			Action:     audit.ReviewCreate,
			TargetType: "review",
			TargetID:   r.ID,
			Metadata:   map[string]any{"rating": r.Rating},
		})
	})
	return out, err
}

// UpdateStatus moderates a review. Staff only.
func (s *ReviewService) UpdateStatus(ctx context.Context, id *auth.Identity, reviewID string, status model.ReviewStatus) (model.Review, error) {
	return s.moderate(ctx, id, reviewID, func(r *model.Review, c auth.Caller, now int64) (audit.Entry, error) {
		if !status.Valid() {
			return audit.Entry{}, apperr.Invalid("unknown review status %q", status)
		}
		prev := r.Status
		r.Status = status
		return audit.Entry{Action: audit.ReviewStatus, Metadata: map[string]any{"from": string(prev), "to": string(status)}}, nil
	})
}

// Respond attaches the tenant's public reply. Staff only.
func (s *ReviewService) Respond(ctx context.Context, id *auth.Identity, reviewID, content string) (model.Review, error) {
	return s.moderate(ctx, id, reviewID, func(r *model.Review, c auth.Caller, now int64) (audit.Entry, error) {
		if strings.TrimSpace(content) == "" {
			return audit.Entry{}, apperr.Invalid("response content is required")
		}
		r.Response = &model.ReviewResponse{Content: content, RespondedBy: c.ID(), RespondedAt: now}
		return audit.Entry{Action: audit.ReviewRespond, Metadata: map[string]any{"contentLength": len(content)}}, nil
	})
}

func (s *ReviewService) moderate(ctx context.Context, id *auth.Identity, reviewID string, apply func(*model.Review, auth.Caller, int64) (audit.Entry, error)) (model.Review, error) {
	var out model.Review
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		reviews := repository.Reviews(tx)
		r, err := load(ctx, reviews, reviewID, "review")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, r.TenantID); err != nil {
			return err
		}
		now := s.nowMs()
		e, err := apply(&r, c, now)
		if err != nil {
			return err
		}
		r.UpdatedAt = now
		if err := reviews.Update(ctx, r); err != nil {
			return storeErr(err, "review")
		}
		out = r
		e.TenantID, e.ActorID, e.TargetType, e.TargetID = r.TenantID, c.ID(), "review", r.ID
		return s.record(ctx, tx, e)
	})
	return out, err
}

func (s *ReviewService) ListByTenant(ctx context.Context, id *auth.Identity, tenantID string, status *model.ReviewStatus, limit int) ([]model.Review, error) {
	var out []model.Review
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
			return err
		}
		all, err := repository.Reviews(tx).List(ctx, repository.ByTenant, tenantID)
		if err != nil {
			return storeErr(err, "review")
		}
		out = filterCap(all, reviewStatusFilter(status), limit)
		return nil
	})
	return out, err
}

func (s *ReviewService) ListByStyle(ctx context.Context, id *auth.Identity, styleID string, status *model.ReviewStatus, limit int) ([]model.Review, error) {
	var out []model.Review
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		st, err := load(ctx, repository.Styles(tx), styleID, "style")
		if err != nil {
			return err
		}
		if err := auth.RequireSameTenant(st.TenantID, c.TenantID()); err != nil {
			return err
		}
		all, err := repository.Reviews(tx).List(ctx, repository.ByStyle, st.ID)
		if err != nil {
			return storeErr(err, "review")
		}
		out = filterCap(all, reviewStatusFilter(status), limit)
		return nil
	})
	return out, err
}

func reviewStatusFilter(status *model.ReviewStatus) func(model.Review) bool {
	if status == nil {
		return nil
	}
	return func(r model.Review) bool { return r.Status == *status }
}
