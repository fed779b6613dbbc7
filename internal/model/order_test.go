package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
)

func newOrder() *Order {
	return &Order{ID: "o1", Status: OrderPending, PaymentStatus: PaymentUnpaid, Progress: NewProgress()}
}

func TestStageStartIsIdempotent(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStageProgress(StageCutting, StageInProgress, "", nil, "w1", 1000))
	require.NoError(t, o.SetStageProgress(StageCutting, StageInProgress, "", nil, "w1", 2000))

	require.NotNil(t, o.Progress.Cutting.StartedAt)
	assert.Equal(t, int64(1000), *o.Progress.Cutting.StartedAt)
	require.NotNil(t, o.CurrentStage)
	assert.Equal(t, StageCutting, *o.CurrentStage)

	var events []string
	for _, e := range o.Timeline {
		if e.Event == "progress_cutting_in_progress" {
			events = append(events, e.Event)
		}
	}
	assert.Len(t, events, 2)
}

func TestStageCompletionClearsCurrentStage(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStageProgress(StageSewing, StageInProgress, "", nil, "w1", 1000))
	require.NoError(t, o.SetStageProgress(StageSewing, StageCompleted, "done", []string{"a.jpg"}, "w1", 3000))
	require.NoError(t, o.SetStageProgress(StageSewing, StageCompleted, "", nil, "w1", 4000))

	assert.Nil(t, o.CurrentStage)
	assert.Equal(t, int64(4000), *o.Progress.Sewing.CompletedAt)
	assert.Equal(t, int64(1000), *o.Progress.Sewing.StartedAt)
	assert.Equal(t, "done", o.Progress.Sewing.Notes)
	assert.Equal(t, []string{"a.jpg"}, o.Progress.Sewing.Images)
}

func TestStartingWorkMovesOrderInProgress(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStatus(OrderConfirmed, "m1", 10))
	require.NoError(t, o.SetStageProgress(StageCutting, StageInProgress, "", nil, "w1", 20))

	assert.Equal(t, OrderInProgress, o.Status)
	assert.Equal(t, "order_in_progress", o.Timeline[len(o.Timeline)-1].Event)
}

func TestInProgressStartsCuttingWhenNothingStarted(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStatus(OrderInProgress, "m1", 50))

	assert.Equal(t, StageInProgress, o.Progress.Cutting.Status)
	assert.Equal(t, int64(50), *o.Progress.Cutting.StartedAt)
	assert.Equal(t, "order_in_progress", o.Timeline[0].Event)
}

func TestResettingLastStartedStageIsRejected(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStageProgress(StageCutting, StageInProgress, "", nil, "w1", 10))
	events := len(o.Timeline)

	err := o.SetStageProgress(StageCutting, StagePending, "", nil, "w1", 20)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, OrderInProgress, o.Status)
	assert.Equal(t, StageInProgress, o.Progress.Cutting.Status)
	assert.Len(t, o.Timeline, events)

	require.NoError(t, o.SetStageProgress(StageSewing, StageInProgress, "", nil, "w1", 30))
	require.NoError(t, o.SetStageProgress(StageCutting, StagePending, "redo", nil, "w1", 40))
	assert.False(t, o.Progress.AllPending())

	fresh := newOrder()
	require.NoError(t, fresh.SetStageProgress(StageSewing, StagePending, "", nil, "w1", 50))
	assert.Equal(t, OrderPending, fresh.Status)
}

func TestStatusTransitions(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.SetStatus(OrderConfirmed, "m1", 1))

	err := o.SetStatus(OrderPending, "m1", 2)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	require.NoError(t, o.SetStatus(OrderCancelled, "m1", 3))
	assert.Equal(t, "order_cancelled", o.Timeline[len(o.Timeline)-1].Event)

	err = o.SetStatus(OrderRefunded, "m1", 4)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	err = o.SetStageProgress(StageCutting, StageInProgress, "", nil, "w1", 5)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	err = newOrder().SetStatus("shipped", "m1", 1)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestAssignWorkerDeduplicates(t *testing.T) {
	o := newOrder()
	o.AssignWorker("w1", "m1", 1)
	o.AssignWorker("w1", "m1", 2)
	o.AssignWorker("w2", "m1", 3)

	assert.Equal(t, []string{"w1", "w2"}, o.AssignedWorkers)
	assert.Len(t, o.Timeline, 3)
	assert.True(t, o.IsAssigned("w2"))
	assert.False(t, o.IsAssigned("w3"))
}

func TestAttachRating(t *testing.T) {
	o := newOrder()
	assert.Error(t, o.AttachRating(Rating{Value: 5, CreatedAt: 1}))

	o.Status = OrderDelivered
	assert.True(t, errors.Is(o.AttachRating(Rating{Value: 6, CreatedAt: 1}), apperr.ErrInvalid))
	require.NoError(t, o.AttachRating(Rating{Value: 4, CreatedAt: 1}))
	assert.True(t, errors.Is(o.AttachRating(Rating{Value: 4, CreatedAt: 2}), apperr.ErrConflict))
}

func TestMetadataMatches(t *testing.T) {
	p := Pricing{Total: decimal.NewFromInt(5000), Currency: "NGN"}

	assert.True(t, (&PaymentMetadata{Amount: decimal.RequireFromString("5000.00"), Currency: "NGN"}).Matches(p))
	assert.False(t, (&PaymentMetadata{Amount: decimal.NewFromInt(4000), Currency: "NGN"}).Matches(p))
	assert.False(t, (&PaymentMetadata{Amount: decimal.NewFromInt(5000), Currency: "USD"}).Matches(p))
	var none *PaymentMetadata
	assert.False(t, none.Matches(p))
}
