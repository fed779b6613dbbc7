package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/repository"
)

func TestWindowStart(t *testing.T) {
	assert.Equal(t, int64(0), WindowStart(59999, 60000))
	assert.Equal(t, int64(60000), WindowStart(60000, 60000))
	assert.Equal(t, int64(120000), WindowStart(150000, 60000))
}

func TestConsumeFixedWindow(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()

	consume := func(now int64) error {
		return s.InTx(ctx, func(tx repository.Tx) error {
			return Consume(ctx, repository.RateLimitCounters(tx), now, "u1", ReviewCreate, 60000, 5)
		})
	}

	for _, now := range []int64{0, 1000, 2000, 3000, 4000} {
		require.NoError(t, consume(now))
	}
	assert.ErrorIs(t, consume(5000), apperr.ErrRateLimited)
	assert.ErrorIs(t, consume(59999), apperr.ErrRateLimited)
	assert.NoError(t, consume(60000))

	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		c, err := repository.RateLimitCounters(tx).Find(ctx, repository.ByActorKey, "u1", ReviewCreate)
		require.NoError(t, err)
		assert.Equal(t, int64(60000), c.WindowStart)
		assert.Equal(t, 1, c.Count)
		return nil
	}))
}

func TestConsumeIsPerActorAndKey(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	err := s.InTx(ctx, func(tx repository.Tx) error {
		counters := repository.RateLimitCounters(tx)
		require.NoError(t, Consume(ctx, counters, 10, "u1", HuddleCreate, 60000, 1))
		assert.ErrorIs(t, Consume(ctx, counters, 11, "u1", HuddleCreate, 60000, 1), apperr.ErrRateLimited)
		assert.NoError(t, Consume(ctx, counters, 12, "u2", HuddleCreate, 60000, 1))
		assert.NoError(t, Consume(ctx, counters, 13, "u1", PortfolioAdd, 60000, 1))
		return nil
	})
	require.NoError(t, err)
}

func TestRejectedCallDoesNotPersistWithFailedOperation(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	l := New(map[string]Budget{MessageSend: {Window: time.Minute, Max: 1}}, func() time.Time { return time.UnixMilli(1000) })

	// The operation fails after consuming, so the counter rolls back too.
	err := s.InTx(ctx, func(tx repository.Tx) error {
		require.NoError(t, l.Allow(ctx, tx, "u1", MessageSend))
		return apperr.Invalid("receiver missing")
	})
	require.Error(t, err)

	require.NoError(t, s.InTx(ctx, func(tx repository.Tx) error {
		return l.Allow(ctx, tx, "u1", MessageSend)
	}))
	assert.ErrorIs(t, s.InTx(ctx, func(tx repository.Tx) error {
		return l.Allow(ctx, tx, "u1", MessageSend)
	}), apperr.ErrRateLimited)
}

func TestUnknownActionIsUnlimited(t *testing.T) {
	ctx := context.Background()
	s := repository.NewMemoryStore()
	l := New(DefaultBudgets(), nil)
	for i := 0; i < 50; i++ {
		require.NoError(t, s.InTx(ctx, func(tx repository.Tx) error { return l.Allow(ctx, tx, "u1", "style.view") }))
	}
	b, ok := l.Budget(InvitationAccept)
	require.True(t, ok)
	assert.Equal(t, Budget{Window: time.Minute, Max: 5}, b)
}
