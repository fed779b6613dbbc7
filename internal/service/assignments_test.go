package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

func (e *env) assign(s shop, o model.Order) model.Assignment {
	e.t.Helper()
	a, err := e.svc.Assignments.Create(e.ctx, s.manager, AssignmentInput{OrderID: o.ID, WorkerID: s.wrkAcc.ID, Stage: model.StageSewing})
	require.NoError(e.t, err)
	return a
}

func TestCreateAssignmentLinksWorkerToOrder(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	o := e.order(s.customer, s.style.ID)
	a := e.assign(s, o)

	assert.Equal(t, model.AssignmentPending, a.Status)
	assert.Equal(t, model.PriorityMedium, a.Priority)
	assert.Equal(t, s.tenant.ID, a.TenantID)

	got, err := e.svc.Orders.Get(e.ctx, s.worker, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{s.wrkAcc.ID}, got.AssignedWorkers)

	notes, err := e.svc.Notifications.ListMine(e.ctx, s.worker, nil, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "assignment_created", notes[0].Type)
}

func TestAssignmentRejectsWorkerFromAnotherTenant(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	other := e.shop("bola")
	o := e.order(s.customer, s.style.ID)

	_, err := e.svc.Assignments.Create(e.ctx, s.manager, AssignmentInput{OrderID: o.ID, WorkerID: other.wrkAcc.ID, Stage: model.StageCutting})
	assert.ErrorIs(t, err, apperr.ErrCrossTenant)

	_, err = e.svc.Assignments.Create(e.ctx, s.worker, AssignmentInput{OrderID: o.ID, WorkerID: s.wrkAcc.ID, Stage: model.StageCutting})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAssignmentProgressSelfOrStaff(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	other := e.shop("bola")
	_, colleague := e.account("ade-worker2", model.RoleWorker, s.tenant.ID)
	a := e.assign(s, e.order(s.customer, s.style.ID))

	_, err := e.svc.Assignments.AddProgressUpdate(e.ctx, s.worker, a.ID, "pattern cut", nil)
	require.NoError(t, err)

	_, err = e.svc.Assignments.AddProgressUpdate(e.ctx, colleague, a.ID, "not mine", nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.Assignments.AddProgressUpdate(e.ctx, other.manager, a.ID, "not ours", nil)
	assert.ErrorIs(t, err, apperr.ErrCrossTenant)

	got, err := e.svc.Assignments.AddProgressUpdate(e.ctx, s.manager, a.ID, "checked", []string{"https://cdn.test/a.jpg"})
	require.NoError(t, err)
	require.Len(t, got.ProgressUpdates, 2)
	assert.Equal(t, "pattern cut", got.ProgressUpdates[0].Message)
}

func TestAssignmentStatusMachine(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	a := e.assign(s, e.order(s.customer, s.style.ID))

	_, err := e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentCompleted)
	assert.ErrorIs(t, err, apperr.ErrConflict, "pending cannot skip to completed")

	_, err = e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentAccepted)
	require.NoError(t, err)
	e.advance(time.Minute)
	started, err := e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentInProgress)
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)

	e.advance(2 * time.Hour)
	done, err := e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.ActualDuration)
	assert.Equal(t, (2 * time.Hour).Milliseconds(), *done.ActualDuration)

	// repeating the current status is a no-op and does not count twice
	_, err = e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentCompleted)
	require.NoError(t, err)
	require.NoError(t, e.store.View(e.ctx, func(tx repository.Tx) error {
		w, err := repository.Accounts(tx).Get(e.ctx, s.wrkAcc.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, w.Stats.TasksCompleted)
		return nil
	}))

	_, err = e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentRejected)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAssignmentListings(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	o := e.order(s.customer, s.style.ID)
	e.assign(s, o)

	mine, err := e.svc.Assignments.ListByWorker(e.ctx, s.worker, s.wrkAcc.ID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	byOrder, err := e.svc.Assignments.ListByOrder(e.ctx, s.customer, o.ID)
	require.NoError(t, err)
	assert.Len(t, byOrder, 1)

	byMgr, err := e.svc.Assignments.ListByManager(e.ctx, s.manager, s.mgrAcc.ID, 0)
	require.NoError(t, err)
	assert.Len(t, byMgr, 1)

	orders, err := e.svc.Orders.ListByWorker(e.ctx, s.worker, s.wrkAcc.ID, nil, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestAssignmentOperationsAreAudited(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	a := e.assign(s, e.order(s.customer, s.style.ID))
	_, err := e.svc.Assignments.UpdateStatus(e.ctx, s.worker, a.ID, model.AssignmentAccepted)
	require.NoError(t, err)
	_, err = e.svc.Assignments.AddProgressUpdate(e.ctx, s.worker, a.ID, "started", nil)
	require.NoError(t, err)

	entries := e.audits(s.tenant.ID)
	assert.Equal(t, []string{audit.AssignmentProgress, audit.AssignmentStatus, audit.AssignmentCreate}, actions(entries))
	assert.Equal(t, s.wrkAcc.ID, entries[0].ActorID)
	assert.Equal(t, "pending", entries[1].Metadata["from"])
	assert.Equal(t, "accepted", entries[1].Metadata["to"])
	assert.Equal(t, a.ID, entries[2].TargetID)
}
