package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
)

func TestAssignmentTimestampsWrittenOnce(t *testing.T) {
	a := &Assignment{Status: AssignmentPending}

	require.NoError(t, a.SetStatus(AssignmentAccepted, 100))
	require.NoError(t, a.SetStatus(AssignmentAccepted, 150))
	require.NoError(t, a.SetStatus(AssignmentInProgress, 200))
	require.NoError(t, a.SetStatus(AssignmentCompleted, 500))

	assert.Equal(t, int64(100), *a.AcceptedAt)
	assert.Equal(t, int64(200), *a.StartedAt)
	assert.Equal(t, int64(500), *a.CompletedAt)
	assert.Equal(t, int64(300), *a.ActualDuration)
}

func TestAssignmentRejectsBackwardMoves(t *testing.T) {
	a := &Assignment{Status: AssignmentInProgress}
	assert.True(t, errors.Is(a.SetStatus(AssignmentPending, 1), apperr.ErrConflict))
	assert.True(t, errors.Is(a.SetStatus(AssignmentRejected, 1), apperr.ErrConflict))

	done := &Assignment{Status: AssignmentCompleted}
	assert.True(t, errors.Is(done.SetStatus(AssignmentInProgress, 1), apperr.ErrConflict))
	assert.True(t, errors.Is(done.SetStatus("paused", 1), apperr.ErrInvalid))
}

func TestParticipantKeyIsUnordered(t *testing.T) {
	assert.Equal(t, ParticipantKey("b", "a"), ParticipantKey("a", "b"))
	assert.Equal(t, "a|b", ParticipantKey("b", "a"))
}

func TestToggleReaction(t *testing.T) {
	m := &Message{}
	m.ToggleReaction("u1", "👍", 1)
	m.ToggleReaction("u2", "👍", 2)
	require.Len(t, m.Reactions, 2)
	m.ToggleReaction("u1", "👍", 3)
	require.Len(t, m.Reactions, 1)
	assert.Equal(t, "u2", m.Reactions[0].UserID)
}
