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

type HuddleService struct{ *core }

type HuddleInput struct {
	RoomName     string
	OrderID      string
	Participants []string
	Type         model.HuddleType
}

// Create starts a call. With an order it is scoped to the order's tenant
// and needs order access; without one the caller's own tenant is used.
// Participants must exist and belong to that tenant, apart from the
// order's customer.
func (s *HuddleService) Create(ctx context.Context, id *auth.Identity, in HuddleInput) (model.Huddle, error) {
	var out model.Huddle
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if strings.TrimSpace(in.RoomName) == "" {
			return apperr.Invalid("room name is required")
		}
		if in.Type != model.HuddleAudio && in.Type != model.HuddleVideo {
			return apperr.Invalid("huddle type must be audio or video")
		}
		tenantID := c.TenantID()
		customerID := ""
		if in.OrderID != "" {
			o, err := load(ctx, repository.Orders(tx), in.OrderID, "order")
			if err != nil {
				return err
			}
			if err := orderAccess(c, o); err != nil {
				return err
			}
			tenantID = o.TenantID
			customerID = o.CustomerID
		} else if tenantID == "" {
			return apperr.ErrCrossTenant
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.HuddleCreate); err != nil {
			return err
		}
		participants := []string{c.ID()}
		seen := map[string]bool{c.ID(): true}
		accounts := repository.Accounts(tx)
		for _, p := range in.Participants {
			if seen[p] {
				continue
			}
			acc, err := load(ctx, accounts, p, "participant")
			if err != nil {
				return err
			}
			// tenant members, plus the customer on an order call
			if acc.ID != customerID {
				if err := auth.RequireSameTenant(tenantID, acc.TenantID); err != nil {
					return err
				}
			}
			seen[p] = true
			participants = append(participants, p)
		}
		now := s.nowMs()
		h := model.Huddle{
			ID:           ids.New(),
			TenantID:     tenantID,
			RoomName:     in.RoomName,
			OrderID:      in.OrderID,
			Participants: participants,
			StartedBy:    c.ID(),
			Type:         in.Type,
			Status:       model.HuddleActive,
			StartedAt:    now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repository.Huddles(tx).Insert(ctx, h); err != nil {
			return storeErr(err, "huddle")
		}
		out = h
		return s.record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			ActorID:    c.ID(),
			Action:     audit.HuddleCreate,
			TargetType: "huddle",
			TargetID:   h.ID,
			Metadata:   map[string]any{"type": string(h.Type)},
		})
	})
	return out, err
}

// End closes an active huddle. Participants and tenant staff may end it.
func (s *HuddleService) End(ctx context.Context, id *auth.Identity, huddleID string) (model.Huddle, error) {
	var out model.Huddle
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		huddles := repository.Huddles(tx)
		h, err := load(ctx, huddles, huddleID, "huddle")
		if err != nil {
			return err
		}
		if !h.HasParticipant(c.ID()) {
			if err := auth.RequireStaff(c, h.TenantID); err != nil {
				return err
			}
		}
		if h.Status == model.HuddleEnded {
			return apperr.Conflict("huddle already ended")
		}
		now := s.nowMs()
		d := now - h.StartedAt
		h.Status = model.HuddleEnded
		h.Duration = &d
		h.EndedAt = &now
		h.UpdatedAt = now
		if err := huddles.Update(ctx, h); err != nil {
			return storeErr(err, "huddle")
		}
		out = h
		return s.record(ctx, tx, audit.Entry{
			TenantID:   h.TenantID,
			ActorID:    c.ID(),
			Action:     audit.HuddleEnd,
			TargetType: "huddle",
			TargetID:   h.ID,
			Metadata:   map[string]any{"duration": d},
		})
	})
	return out, err
}

func (s *HuddleService) ListByOrder(ctx context.Context, id *auth.Identity, orderID string, status *model.HuddleStatus) ([]model.Huddle, error) {
	var out []model.Huddle
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if err := orderAccess(c, o); err != nil {
			return err
		}
		all, err := repository.Huddles(tx).List(ctx, repository.ByOrder, o.ID)
		if err != nil {
			return storeErr(err, "huddle")
		}
		var keep func(model.Huddle) bool
		if status != nil {
			keep = func(h model.Huddle) bool { return h.Status == *status }
		}
		out = filterCap(all, keep, 0)
		return nil
	})
	return out, err
}
