package model

import "github.com/iliyamo/stylehub/internal/apperr"

type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentRejected   AssignmentStatus = "rejected"
)

// assignmentMoves lists the statuses reachable from each status.
var assignmentMoves = map[AssignmentStatus][]AssignmentStatus{
	AssignmentPending:    {AssignmentAccepted, AssignmentRejected},
	AssignmentAccepted:   {AssignmentInProgress, AssignmentRejected},
	AssignmentInProgress: {AssignmentCompleted},
}

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentInProgress, AssignmentCompleted, AssignmentRejected:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type ProgressUpdate struct {
	Message   string   `json:"message"`
	Images    []string `json:"images,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Assignment hands one production stage of an order to a worker.
type Assignment struct {
	ID                string           `json:"id"`
	OrderID           string           `json:"orderId"`
	TenantID          string           `json:"tenantId"`
	WorkerID          string           `json:"workerId"`
	Stage             Stage            `json:"stage"`
	AssignedBy        string           `json:"assignedBy"`
	Status            AssignmentStatus `json:"status"`
	Priority          Priority         `json:"priority"`
	Notes             string           `json:"notes,omitempty"`
	EstimatedDuration *int64           `json:"estimatedDuration,omitempty"`
	ActualDuration    *int64           `json:"actualDuration,omitempty"`
	ProgressUpdates   []ProgressUpdate `json:"progressUpdates"`
	AssignedAt        int64            `json:"assignedAt"`
	AcceptedAt        *int64           `json:"acceptedAt,omitempty"`
	StartedAt         *int64           `json:"startedAt,omitempty"`
	CompletedAt       *int64           `json:"completedAt,omitempty"`
	CreatedAt         int64            `json:"createdAt"`
	UpdatedAt         int64            `json:"updatedAt"`
}

// SetStatus applies a worker status change. Re-entering the current
// status leaves timestamps untouched; each timestamp is written once.
func (a *Assignment) SetStatus(next AssignmentStatus, at int64) error {
	if !next.Valid() {
		return apperr.Invalid("unknown assignment status %q", next)
	}
	if next == a.Status {
		return nil
	}
	allowed := false
	for _, s := range assignmentMoves[a.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Conflict("cannot move assignment from %s to %s", a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = at
	switch next {
	case AssignmentAccepted:
		if a.AcceptedAt == nil {
			a.AcceptedAt = ptr(at)
		}
	case AssignmentInProgress:
		if a.StartedAt == nil {
			a.StartedAt = ptr(at)
		}
	case AssignmentCompleted:
		if a.CompletedAt == nil {
			a.CompletedAt = ptr(at)
		}
		if a.StartedAt != nil {
			a.ActualDuration = ptr(at - *a.StartedAt)
		}
	}
	return nil
}

func ptr(v int64) *int64 { return &v }
