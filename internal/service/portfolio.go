package service

import (
	"context"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type PortfolioService struct{ *core }

type PortfolioInput struct {
	WorkerID    string
	OrderID     string
	Title       string
	Description string
	Images      []model.Image
	Category    string
	Tags        []string
	IsPublic    bool
	IsFeatured  bool
	CompletedAt int64
}

// worker loads the portfolio owner and checks the caller may add to their
// portfolio: the worker themselves or staff of the worker's tenant.
func (s *PortfolioService) worker(ctx context.Context, tx repository.Tx, c auth.Caller, workerID string) (model.Account, error) {
	w, err := load(ctx, repository.Accounts(tx), workerID, "account")
	if err != nil {
		return w, err
	}
	return w, manageable(c, w.ID, w.TenantID)
}

// manageable checks the caller against the tenant an item is recorded
// under, which stays fixed when the worker later changes tenant.
func manageable(c auth.Caller, workerID, tenantID string) error {
	if err := auth.RequireSameTenant(tenantID, c.TenantID()); err != nil {
		return err
	}
	return auth.RequireSelfOrRole(c, workerID, tenantID, auth.StaffRoles...)
}

func (s *PortfolioService) Add(ctx context.Context, id *auth.Identity, in PortfolioInput) (model.PortfolioItem, error) {
	var out model.PortfolioItem
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		w, err := s.worker(ctx, tx, c, in.WorkerID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(in.Title) == "" {
			return apperr.Invalid("title is required")
		}
		if in.OrderID != "" {
			o, err := load(ctx, repository.Orders(tx), in.OrderID, "order")
			if err != nil {
				return err
			}
			if err := auth.RequireSameTenant(o.TenantID, w.TenantID); err != nil {
				return err
			}
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.PortfolioAdd); err != nil {
			return err
		}
		now := s.nowMs()
		item := model.PortfolioItem{
			ID:          ids.New(),
			WorkerID:    w.ID,
			TenantID:    w.TenantID,
			OrderID:     in.OrderID,
			Title:       in.Title,
			Description: in.Description,
			Images:      nonNil(in.Images),
			Category:    in.Category,
			Tags:        nonNil(in.Tags),
			IsPublic:    in.IsPublic,
			IsFeatured:  in.IsFeatured,
			CompletedAt: in.CompletedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repository.Portfolio(tx).Insert(ctx, item); err != nil {
			return storeErr(err, "portfolio item")
		}
		out = item
		return s.record(ctx, tx, audit.Entry{
			TenantID:   w.TenantID,
			ActorID:    c.ID(),
			Action:     audit.PortfolioAdd,
			TargetType: "portfolioItem",
			TargetID:   item.ID,
			Metadata:   map[string]any{"title": item.Title},
		})
	})
	return out, err
}

// PortfolioUpdate changes only the fields that are set.
type PortfolioUpdate struct {
	Title       *string
	Description *string
	Images      *[]model.Image
	Category    *string
	Tags        *[]string
	IsPublic    *bool
	IsFeatured  *bool
}

// fields lists the names of the set fields.
func (u PortfolioUpdate) fields() []string {
	var f []string
	add := func(set bool, name string) {
		if set {
			f = append(f, name)
		}
	}
	add(u.Title != nil, "title")
	add(u.Description != nil, "description")
	add(u.Images != nil, "images")
	add(u.Category != nil, "category")
	add(u.Tags != nil, "tags")
	add(u.IsPublic != nil, "isPublic")
	add(u.IsFeatured != nil, "isFeatured")
	return f
}

func (s *PortfolioService) Update(ctx context.Context, id *auth.Identity, itemID string, u PortfolioUpdate) (model.PortfolioItem, error) {
	var out model.PortfolioItem
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		items := repository.Portfolio(tx)
		item, err := load(ctx, items, itemID, "portfolio item")
		if err != nil {
			return err
		}
		if err := manageable(c, item.WorkerID, item.TenantID); err != nil {
			return err
		}
		if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
			return apperr.Invalid("title must not be empty")
		}
		setIf(&item.Title, u.Title)
		setIf(&item.Description, u.Description)
		setIf(&item.Images, u.Images)
		setIf(&item.Category, u.Category)
		setIf(&item.Tags, u.Tags)
		setIf(&item.IsPublic, u.IsPublic)
		setIf(&item.IsFeatured, u.IsFeatured)
		item.UpdatedAt = s.nowMs()
		if err := items.Update(ctx, item); err != nil {
			return storeErr(err, "portfolio item")
		}
		out = item
		return s.record(ctx, tx, audit.Entry{
			TenantID:   item.TenantID,
			ActorID:    c.ID(),
			Action:     audit.PortfolioUpdate,
			TargetType: "portfolioItem",
			TargetID:   item.ID,
			Metadata:   map[string]any{"fields": u.fields()},
		})
	})
	return out, err
}

func (s *PortfolioService) Delete(ctx context.Context, id *auth.Identity, itemID string) error {
	return s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		items := repository.Portfolio(tx)
		item, err := load(ctx, items, itemID, "portfolio item")
		if err != nil {
			return err
		}
		if err := manageable(c, item.WorkerID, item.TenantID); err != nil {
			return err
		}
		if err := items.Delete(ctx, item.ID); err != nil {
			return storeErr(err, "portfolio item")
		}
		return s.record(ctx, tx, audit.Entry{
			TenantID:   item.TenantID,
			ActorID:    c.ID(),
			Action:     audit.PortfolioDelete,
			TargetType: "portfolioItem",
			TargetID:   item.ID,
		})
	})
}

// ListByWorker returns all of a worker's items to members of their tenant.
func (s *PortfolioService) ListByWorker(ctx context.Context, id *auth.Identity, workerID string) ([]model.PortfolioItem, error) {
	var out []model.PortfolioItem
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		w, err := load(ctx, repository.Accounts(tx), workerID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSameTenant(w.TenantID, c.TenantID()); err != nil {
			return err
		}
		out, err = repository.Portfolio(tx).List(ctx, repository.ByWorker, w.ID)
		return storeErr(err, "portfolio item")
	})
	return out, err
}

// ListPublic returns public items, optionally of one worker. It needs no
// identity.
func (s *PortfolioService) ListPublic(ctx context.Context, workerID string, limit int) ([]model.PortfolioItem, error) {
	var out []model.PortfolioItem
	err := s.Store.View(ctx, func(tx repository.Tx) error {
		all, err := repository.Portfolio(tx).List(ctx, repository.ByPublic, true)
		if err != nil {
			return storeErr(err, "portfolio item")
		}
		var keep func(model.PortfolioItem) bool
		if workerID != "" {
			keep = func(p model.PortfolioItem) bool { return p.WorkerID == workerID }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}
