package service

import (
	"context"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type NotificationService struct{ *core }

// ListMine returns the caller's notifications that have not expired.
func (s *NotificationService) ListMine(ctx context.Context, id *auth.Identity, isRead *bool, limit int) ([]model.Notification, error) {
	var out []model.Notification
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		all, err := repository.Notifications(tx).List(ctx, repository.ByUser, c.ID())
		if err != nil {
			return storeErr(err, "notification")
		}
		now := s.nowMs()
		out = filterCap(all, func(n model.Notification) bool {
			if n.Expired(now) {
				return false
			}
			return isRead == nil || n.IsRead == *isRead
		}, limit)
		return nil
	})
	return out, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, id *auth.Identity) (int, error) {
	unread := false
	items, err := s.ListMine(ctx, id, &unread, 0)
	return len(items), err
}

type NotificationInput struct {
	UserID    string
	Type      string
	Title     string
	Message   string
	Data      map[string]any
	OrderID   string
	StyleID   string
	ActionURL string
	Priority  model.NotificationPriority
	ExpiresAt *int64
}

// Create sends an in-app notification to an account of the caller's
// tenant. Staff only.
func (s *NotificationService) Create(ctx context.Context, id *auth.Identity, in NotificationInput) (model.Notification, error) {
	var out model.Notification
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		target, err := load(ctx, repository.Accounts(tx), in.UserID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, target.TenantID); err != nil {
			return err
		}
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Type) == "" {
			return apperr.Invalid("type and title are required")
		}
		switch in.Priority {
		case "", model.PriorityNotifyLow, model.PriorityNotifyNormal, model.PriorityNotifyHigh:
		default:
			return apperr.Invalid("unknown priority %q", in.Priority)
		}
		n := model.Notification{
			UserID:    target.ID,
			Type:      in.Type,
			Title:     in.Title,
			Message:   in.Message,
			Data:      in.Data,
			OrderID:   in.OrderID,
			StyleID:   in.StyleID,
			SenderID:  c.ID(),
			ActionURL: in.ActionURL,
			Priority:  in.Priority,
			ExpiresAt: in.ExpiresAt,
		}
		out, err = s.insertNotification(ctx, tx, n)
		return err
	})
	return out, err
}

// MarkRead marks one of the caller's notifications read. A second call
// keeps the original readAt.
func (s *NotificationService) MarkRead(ctx context.Context, id *auth.Identity, notificationID string) (model.Notification, error) {
	var out model.Notification
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		notes := repository.Notifications(tx)
		n, err := s.own(ctx, notes, c, notificationID)
		if err != nil {
			return err
		}
		out = n
		if n.IsRead {
			return nil
		}
		now := s.nowMs()
		n.IsRead = true
		n.ReadAt = &now
		n.UpdatedAt = now
		out = n
		return storeErr(notes.Update(ctx, n), "notification")
	})
	return out, err
}

// MarkAllRead marks every unread notification of the caller and returns
// how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, id *auth.Identity) (int, error) {
	var changed int
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		notes := repository.Notifications(tx)
		all, err := notes.List(ctx, repository.ByUser, c.ID())
		if err != nil {
			return storeErr(err, "notification")
		}
		now := s.nowMs()
		for _, n := range all {
			if n.IsRead {
				continue
			}
			n.IsRead = true
			n.ReadAt = &now
			n.UpdatedAt = now
			if err := notes.Update(ctx, n); err != nil {
				return storeErr(err, "notification")
			}
			changed++
		}
		return nil
	})
	return changed, err
}

func (s *NotificationService) Delete(ctx context.Context, id *auth.Identity, notificationID string) error {
	return s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		notes := repository.Notifications(tx)
		n, err := s.own(ctx, notes, c, notificationID)
		if err != nil {
			return err
		}
		return storeErr(notes.Delete(ctx, n.ID), "notification")
	})
}

// DeleteRead removes the caller's read notifications.
func (s *NotificationService) DeleteRead(ctx context.Context, id *auth.Identity) (int, error) {
	var removed int
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		notes := repository.Notifications(tx)
		all, err := notes.List(ctx, repository.ByUser, c.ID())
		if err != nil {
			return storeErr(err, "notification")
		}
		for _, n := range all {
			if !n.IsRead {
				continue
			}
			if err := notes.Delete(ctx, n.ID); err != nil {
				return storeErr(err, "notification")
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *NotificationService) own(ctx context.Context, notes repository.Table[model.Notification], c auth.Caller, notificationID string) (model.Notification, error) {
	n, err := load(ctx, notes, notificationID, "notification")
	if err != nil {
		return n, err
	}
	if n.UserID != c.ID() {
		return n, apperr.NotFound("notification")
	}
	return n, nil
}
