// Package audit writes the append-only trail of privileged actions.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/repository"
)

// Action names.
const (
	AssignmentCreate   = "assignment.create"
	AssignmentStatus   = "assignment.status"
	AssignmentProgress = "assignment.progress"
	PaymentCreate      = "payment.create"
	PaymentStatus      = "payment.status"
	InvitationCreate   = "invitation.create"
	InvitationAccept   = "invitation.accept"
	InvitationCancel   = "invitation.cancel"
	ReviewCreate       = "review.create"
	ReviewStatus       = "review.status"
	ReviewRespond      = "review.respond"
	PortfolioAdd       = "portfolio.add"
	PortfolioUpdate    = "portfolio.update"
	PortfolioDelete    = "portfolio.delete"
	HuddleCreate       = "huddle.create"
	HuddleEnd          = "huddle.end"
	StyleSave          = "style.save"
	StyleUnsave        = "style.unsave"
)

// Entry is the caller-supplied part of an audit row.
type Entry struct {
	TenantID   string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Recorder appends audit rows.
type Recorder struct {
	log *zap.Logger
	now func() time.Time
}

func NewRecorder(log *zap.Logger, now func() time.Time) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{log: log, now: now}
}

// Record inserts e in tx. The row commits or rolls back with the write it
// describes, so an insert failure is returned and aborts the transaction.
func (r *Recorder) Record(ctx context.Context, tx repository.Tx, e Entry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	row := model.AuditEntry{
		ID:         ids.New(),
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Metadata:   meta,
		CreatedAt:  r.now().UnixMilli(),
	}
	if err := repository.AuditEntries(tx).Insert(ctx, row); err != nil {
		return fmt.Errorf("audit %s: %w", e.Action, err)
	}
	obs.AuditEntries.WithLabelValues(e.Action).Inc()
	r.log.Info("audit",
		zap.String("action", e.Action),
		zap.String("tenant_id", e.TenantID),
		zap.String("actor_id", e.ActorID),
		zap.String("target_type", e.TargetType),
		zap.String("target_id", e.TargetID),
		zap.Any("metadata", meta),
	)
	return nil
}
