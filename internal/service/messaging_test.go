package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/model"
)

func TestConversationIsSharedByBothDirections(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")

	m1, err := e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.mgrAcc.ID, Content: "hello"})
	require.NoError(t, err)
	e.advance(time.Second)
	m2, err := e.svc.Messages.Send(e.ctx, s.manager, MessageInput{ReceiverID: s.custAcc.ID, Content: "hi back"})
	require.NoError(t, err)
	assert.Equal(t, m1.ConversationID, m2.ConversationID)

	a, err := e.svc.Conversations.GetWith(e.ctx, s.customer, s.mgrAcc.ID)
	require.NoError(t, err)
	b, err := e.svc.Conversations.GetWith(e.ctx, s.manager, s.custAcc.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, model.ParticipantKey(s.mgrAcc.ID, s.custAcc.ID), a.ParticipantKey)
	assert.Equal(t, 1, a.UnreadCounts[s.custAcc.ID])
	assert.Equal(t, 1, a.UnreadCounts[s.mgrAcc.ID])
	assert.Equal(t, "hi back", a.LastMessage.Content)

	mine, err := e.svc.Conversations.ListMine(e.ctx, s.customer, nil, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := e.svc.Conversations.ListMine(e.ctx, s.manager, nil, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestMarkReadClearsUnreadOnce(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	for _, text := range []string{"one", "two"} {
		_, err := e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.mgrAcc.ID, Content: text})
		require.NoError(t, err)
	}
	cv, err := e.svc.Conversations.GetWith(e.ctx, s.manager, s.custAcc.ID)
	require.NoError(t, err)

	n, err := e.svc.Messages.UnreadCount(e.ctx, s.manager)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	changed, err := e.svc.Messages.MarkRead(e.ctx, s.manager, cv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	changed, err = e.svc.Messages.MarkRead(e.ctx, s.manager, cv.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)

	n, err = e.svc.Messages.UnreadCount(e.ctx, s.manager)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the sender's own messages are not theirs to mark
	changed, err = e.svc.Messages.MarkRead(e.ctx, s.customer, cv.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestMessageRules(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	other := e.shop("bola")

	_, err := e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.custAcc.ID, Content: "me"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.mgrAcc.ID, Content: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: "missing", Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	o := e.order(s.customer, s.style.ID)
	_, err = e.svc.Messages.Send(e.ctx, other.manager, MessageInput{ReceiverID: s.custAcc.ID, OrderID: o.ID, Content: "x"})
	assert.ErrorIs(t, err, apperr.ErrCrossTenant)

	m, err := e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.mgrAcc.ID, OrderID: o.ID, Content: "about my order"})
	require.NoError(t, err)

	_, err = e.svc.Messages.Edit(e.ctx, s.manager, m.ID, "hijack")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	edited, err := e.svc.Messages.Edit(e.ctx, s.customer, m.ID, "about my order, again")
	require.NoError(t, err)
	assert.True(t, edited.IsEdited)

	reacted, err := e.svc.Messages.ToggleReaction(e.ctx, s.manager, m.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, reacted.Reactions, 1)
	reacted, err = e.svc.Messages.ToggleReaction(e.ctx, s.manager, m.ID, "👍")
	require.NoError(t, err)
	assert.Empty(t, reacted.Reactions)

	byOrder, err := e.svc.Messages.ListByOrder(e.ctx, s.manager, o.ID, 0)
	require.NoError(t, err)
	assert.Len(t, byOrder, 1)
}

func TestNonParticipantCannotReadConversation(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	m, err := e.svc.Messages.Send(e.ctx, s.customer, MessageInput{ReceiverID: s.mgrAcc.ID, Content: "private"})
	require.NoError(t, err)

	_, err = e.svc.Messages.ListByConversation(e.ctx, s.admin, m.ConversationID, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestNotificationMarkReadKeepsFirstReadAt(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	e.order(s.customer, s.style.ID)

	notes, err := e.svc.Notifications.ListMine(e.ctx, s.customer, nil, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	first, err := e.svc.Notifications.MarkRead(e.ctx, s.customer, notes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	e.advance(time.Hour)
	again, err := e.svc.Notifications.MarkRead(e.ctx, s.customer, notes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ReadAt, *again.ReadAt)

	n, err := e.svc.Notifications.UnreadCount(e.ctx, s.customer)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = e.svc.Notifications.MarkRead(e.ctx, s.manager, notes[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNotificationBulkOperations(t *testing.T) {
	e := newEnv(t)
	s := e.shop("ade")
	for i := 0; i < 3; i++ {
		_, err := e.svc.Notifications.Create(e.ctx, s.manager, NotificationInput{UserID: s.wrkAcc.ID, Type: "system", Title: "Heads up", Message: "shift change"})
		require.NoError(t, err)
	}

	changed, err := e.svc.Notifications.MarkAllRead(e.ctx, s.worker)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	deleted, err := e.svc.Notifications.DeleteRead(e.ctx, s.worker)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	left, err := e.svc.Notifications.ListMine(e.ctx, s.worker, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, left)
}
