package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type AssignmentService struct{ *core }

type AssignmentInput struct {
	OrderID           string
	WorkerID          string
	Stage             model.Stage
	Priority          model.Priority
	Notes             string
	EstimatedDuration *int64
}

// Create hands a stage of an order to a worker of the same tenant.
func (s *AssignmentService) Create(ctx context.Context, id *auth.Identity, in AssignmentInput) (model.Assignment, error) {
	var out model.Assignment
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		orders := repository.Orders(tx)
		o, err := load(ctx, orders, in.OrderID, "order")
		if err != nil {
			return err
		}
		if err := auth.RequireStaff(c, o.TenantID); err != nil {
			return err
		}
		worker, err := load(ctx, repository.Accounts(tx), in.WorkerID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSameTenant(o.TenantID, worker.TenantID); err != nil {
			return err
		}
		if !in.Stage.Valid() {
			return apperr.Invalid("unknown stage %q", in.Stage)
		}
		if in.Priority == "" {
			in.Priority = model.PriorityMedium
		}
		if !in.Priority.Valid() {
			return apperr.Invalid("unknown priority %q", in.Priority)
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.AssignmentCreate); err != nil {
			return err
		}
		now := s.nowMs()
		a := model.Assignment{
			ID:                ids.New(),
			OrderID:           o.ID,
			TenantID:          o.TenantID,
			WorkerID:          worker.ID,
			Stage:             in.Stage,
			AssignedBy:        c.ID(),
			Status:            model.AssignmentPending,
			Priority:          in.Priority,
			Notes:             in.Notes,
			EstimatedDuration: in.EstimatedDuration,
			ProgressUpdates:   []model.ProgressUpdate{},
			AssignedAt:        now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := repository.Assignments(tx).Insert(ctx, a); err != nil {
			return storeErr(err, "assignment")
		}
		o.AssignWorker(worker.ID, c.ID(), now)
		if err := orders.Update(ctx, o); err != nil {
			return storeErr(err, "order")
		}
		if err := s.notify(ctx, tx, model.Notification{
			UserID:   worker.ID,
			Type:     "assignment_created",
			Title:    "New assignment",
			Message:  fmt.Sprintf("You have been assigned the %s stage of order %s.", in.Stage, o.OrderNumber),
			OrderID:  o.ID,
			SenderID: c.ID(),
			Priority: notifyPriority(in.Priority),
		}); err != nil {
			return err
		}
		out = a
		return s.record(ctx, tx, audit.Entry{
			TenantID:   o.TenantID,
			ActorID:    c.ID(),
			Action:     audit.AssignmentCreate,
			TargetType: "assignment",
			TargetID:   a.ID,
			Metadata: map[string]any{
				"orderId":  o.ID,
				"workerId": worker.ID,
				"stage":    string(in.Stage),
			},
		})
	})
	return out, err
}

func notifyPriority(p model.Priority) model.NotificationPriority {
	switch p {
	case model.PriorityHigh, model.PriorityUrgent:
		return model.PriorityNotifyHigh
	case model.PriorityLow:
		return model.PriorityNotifyLow
	}
	return model.PriorityNotifyNormal
}

// UpdateStatus applies a status change by the assigned worker or staff.
func (s *AssignmentService) UpdateStatus(ctx context.Context, id *auth.Identity, assignmentID string, next model.AssignmentStatus) (model.Assignment, error) {
	var out model.Assignment
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		assignments := repository.Assignments(tx)
		a, err := load(ctx, assignments, assignmentID, "assignment")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, a.WorkerID, a.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		prev := a.Status
		now := s.nowMs()
		if err := a.SetStatus(next, now); err != nil {
			return err
		}
		if err := assignments.Update(ctx, a); err != nil {
			return storeErr(err, "assignment")
		}
		if prev != model.AssignmentCompleted && a.Status == model.AssignmentCompleted {
			accounts := repository.Accounts(tx)
			w, err := load(ctx, accounts, a.WorkerID, "account")
			if err != nil {
				return err
			}
			w.Stats.TasksCompleted++
			w.UpdatedAt = now
			if err := accounts.Update(ctx, w); err != nil {
				return storeErr(err, "account")
			}
		}
		out = a
		return s.record(ctx, tx, audit.Entry{
			TenantID:   a.TenantID,
			ActorID:    c.ID(),
			Action:     audit.AssignmentStatus,
			TargetType: "assignment",
			TargetID:   a.ID,
			Metadata:   map[string]any{"from": string(prev), "to": string(a.Status)},
		})
	})
	return out, err
}

// AddProgressUpdate appends a worker note to the assignment.
func (s *AssignmentService) AddProgressUpdate(ctx context.Context, id *auth.Identity, assignmentID, message string, images []string) (model.Assignment, error) {
	var out model.Assignment
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		assignments := repository.Assignments(tx)
		a, err := load(ctx, assignments, assignmentID, "assignment")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, a.WorkerID, a.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		if strings.TrimSpace(message) == "" {
			return apperr.Invalid("message is required")
		}
		now := s.nowMs()
		a.ProgressUpdates = append(a.ProgressUpdates, model.ProgressUpdate{Message: message, Images: images, Timestamp: now})
		a.UpdatedAt = now
		if err := assignments.Update(ctx, a); err != nil {
			return storeErr(err, "assignment")
		}
		out = a
		return s.record(ctx, tx, audit.Entry{
			TenantID:   a.TenantID,
			ActorID:    c.ID(),
			Action:     audit.AssignmentProgress,
			TargetType: "assignment",
			TargetID:   a.ID,
			Metadata:   map[string]any{"updates": len(a.ProgressUpdates)},
		})
	})
	return out, err
}

func (s *AssignmentService) ListByWorker(ctx context.Context, id *auth.Identity, workerID string, status *model.AssignmentStatus, limit int) ([]model.Assignment, error) {
	var out []model.Assignment
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		w, err := load(ctx, repository.Accounts(tx), workerID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, w.ID, w.TenantID, auth.StaffRoles...); err != nil {
			return err
		}
		all, err := repository.Assignments(tx).List(ctx, repository.ByWorker, w.ID)
		if err != nil {
			return storeErr(err, "assignment")
		}
		var keep func(model.Assignment) bool
		if status != nil {
			keep = func(a model.Assignment) bool { return a.Status == *status }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

func (s *AssignmentService) ListByOrder(ctx context.Context, id *auth.Identity, orderID string) ([]model.Assignment, error) {
	var out []model.Assignment
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if err := orderAccess(c, o); err != nil {
			return err
		}
		out, err = repository.Assignments(tx).List(ctx, repository.ByOrder, o.ID)
		return storeErr(err, "assignment")
	})
	return out, err
}

// ListByManager lists the assignments created by managerID.
func (s *AssignmentService) ListByManager(ctx context.Context, id *auth.Identity, managerID string, limit int) ([]model.Assignment, error) {
	var out []model.Assignment
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		m, err := load(ctx, repository.Accounts(tx), managerID, "account")
		if err != nil {
			return err
		}
		if err := auth.RequireSelfOrRole(c, m.ID, m.TenantID, auth.AdminRoles...); err != nil {
			return err
		}
		all, err := repository.Assignments(tx).List(ctx, repository.ByManager, m.ID)
		out = filterCap(all, nil, limit)
		return storeErr(err, "assignment")
	})
	return out, err
}
