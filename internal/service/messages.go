package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/ids"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
)

type MessageService struct{ *core }

type MessageInput struct {
	ReceiverID string
	OrderID    string
	Content    string
	Type       model.MessageType
	FileURL    string
	FileName   string
	FileSize   int64
	ReplyTo    string
}

// Send delivers a message from the caller to the receiver, creating their
// conversation on first contact.
func (s *MessageService) Send(ctx context.Context, id *auth.Identity, in MessageInput) (model.Message, error) {
	var out model.Message
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if in.Type == "" {
			in.Type = model.MessageText
		}
		if !in.Type.Valid() {
			return apperr.Invalid("unknown message type %q", in.Type)
		}
		if strings.TrimSpace(in.Content) == "" && in.FileURL == "" {
			return apperr.Invalid("message content is required")
		}
		if in.ReceiverID == c.ID() {
			return apperr.Invalid("cannot message yourself")
		}
		if _, err := load(ctx, repository.Accounts(tx), in.ReceiverID, "account"); err != nil {
			return err
		}
		if in.OrderID != "" {
			o, err := load(ctx, repository.Orders(tx), in.OrderID, "order")
			if err != nil {
				return err
			}
			if err := orderAccess(c, o); err != nil {
				return err
			}
		}
		if err := s.Limiter.Allow(ctx, tx, c.ID(), ratelimit.MessageSend); err != nil {
			return err
		}

		now := s.nowMs()
		convs := repository.Conversations(tx)
		key := model.ParticipantKey(c.ID(), in.ReceiverID)
		cv, err := convs.Find(ctx, repository.ByParticipantKey, key)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			lo, hi := model.SortedPair(c.ID(), in.ReceiverID)
			cv = model.Conversation{
				ID:             ids.New(),
				ParticipantKey: key,
				Participants:   []string{lo, hi},
				OrderID:        in.OrderID,
				Type:           model.ConversationDirect,
				UnreadCounts:   map[string]int{lo: 0, hi: 0},
				CreatedAt:      now,
			}
			if in.OrderID != "" {
				cv.Type = model.ConversationOrder
			}
		case err != nil:
			return storeErr(err, "conversation")
		}
		if cv.UnreadCounts == nil {
			cv.UnreadCounts = map[string]int{}
		}
		cv.UnreadCounts[in.ReceiverID]++
		cv.LastMessage = &model.LastMessage{Content: in.Content, SenderID: c.ID(), Timestamp: now}
		cv.IsArchived = false
		cv.UpdatedAt = now
		if err := convs.Upsert(ctx, cv); err != nil {
			return storeErr(err, "conversation")
		}

		m := model.Message{
			ID:             ids.New(),
			ConversationID: cv.ID,
			SenderID:       c.ID(),
			ReceiverID:     in.ReceiverID,
			OrderID:        in.OrderID,
			Content:        in.Content,
			Type:           in.Type,
			FileURL:        in.FileURL,
			FileName:       in.FileName,
			FileSize:       in.FileSize,
			ReplyTo:        in.ReplyTo,
			Reactions:      []model.Reaction{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repository.Messages(tx).Insert(ctx, m); err != nil {
			return storeErr(err, "message")
		}
		out = m
		return nil
	})
	return out, err
}

func (s *MessageService) ListByConversation(ctx context.Context, id *auth.Identity, conversationID string, limit int) ([]model.Message, error) {
	var out []model.Message
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		cv, err := participantConversation(ctx, tx, c, conversationID)
		if err != nil {
			return err
		}
		all, err := repository.Messages(tx).List(ctx, repository.ByConversation, cv.ID)
		out = filterCap(all, nil, limit)
		return storeErr(err, "message")
	})
	return out, err
}

func (s *MessageService) ListByOrder(ctx context.Context, id *auth.Identity, orderID string, limit int) ([]model.Message, error) {
	var out []model.Message
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		o, err := load(ctx, repository.Orders(tx), orderID, "order")
		if err != nil {
			return err
		}
		if err := orderAccess(c, o); err != nil {
			return err
		}
		all, err := repository.Messages(tx).List(ctx, repository.ByOrder, o.ID)
		out = filterCap(all, nil, limit)
		return storeErr(err, "message")
	})
	return out, err
}

// UnreadCount counts live messages addressed to the caller not yet read.
func (s *MessageService) UnreadCount(ctx context.Context, id *auth.Identity) (int, error) {
	var n int
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		all, err := repository.Messages(tx).List(ctx, repository.ByReceiver, c.ID())
		if err != nil {
			return storeErr(err, "message")
		}
		for _, m := range all {
			if !m.IsRead && m.DeletedAt == nil {
				n++
			}
		}
		return nil
	})
	return n, err
}

// MarkRead marks every message addressed to the caller in the
// conversation as read and clears their unread counter. Already read
// messages are left untouched.
func (s *MessageService) MarkRead(ctx context.Context, id *auth.Identity, conversationID string) (int, error) {
	var changed int
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		cv, err := participantConversation(ctx, tx, c, conversationID)
		if err != nil {
			return err
		}
		msgs := repository.Messages(tx)
		all, err := msgs.List(ctx, repository.ByConversation, cv.ID)
		if err != nil {
			return storeErr(err, "message")
		}
		now := s.nowMs()
		for _, m := range all {
			if m.ReceiverID != c.ID() || m.IsRead {
				continue
			}
			m.IsRead = true
			m.UpdatedAt = now
			if err := msgs.Update(ctx, m); err != nil {
				return storeErr(err, "message")
			}
			changed++
		}
		if cv.UnreadCounts[c.ID()] == 0 {
			return nil
		}
		cv.UnreadCounts[c.ID()] = 0
		cv.UpdatedAt = now
		return storeErr(repository.Conversations(tx).Update(ctx, cv), "conversation")
	})
	return changed, err
}

// Edit replaces the content of the caller's own message.
func (s *MessageService) Edit(ctx context.Context, id *auth.Identity, messageID, content string) (model.Message, error) {
	return s.ownMessage(ctx, id, messageID, func(m *model.Message, now int64) error {
		if m.DeletedAt != nil {
			return apperr.Conflict("message was deleted")
		}
		if strings.TrimSpace(content) == "" {
			return apperr.Invalid("message content is required")
		}
		m.Content = content
		m.IsEdited = true
		m.EditedAt = &now
		return nil
	})
}

// Delete soft-deletes the caller's own message.
func (s *MessageService) Delete(ctx context.Context, id *auth.Identity, messageID string) (model.Message, error) {
	return s.ownMessage(ctx, id, messageID, func(m *model.Message, now int64) error {
		if m.DeletedAt == nil {
			m.DeletedAt = &now
		}
		return nil
	})
}

func (s *MessageService) ownMessage(ctx context.Context, id *auth.Identity, messageID string, apply func(*model.Message, int64) error) (model.Message, error) {
	var out model.Message
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		msgs := repository.Messages(tx)
		m, err := load(ctx, msgs, messageID, "message")
		if err != nil {
			return err
		}
		if m.SenderID != c.ID() {
			return apperr.Forbidden("only the sender can change a message")
		}
		now := s.nowMs()
		if err := apply(&m, now); err != nil {
			return err
		}
		m.UpdatedAt = now
		out = m
		return storeErr(msgs.Update(ctx, m), "message")
	})
	return out, err
}

// ToggleReaction adds or removes the caller's emoji on a message in one
// of their conversations.
func (s *MessageService) ToggleReaction(ctx context.Context, id *auth.Identity, messageID, emoji string) (model.Message, error) {
	var out model.Message
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		if strings.TrimSpace(emoji) == "" {
			return apperr.Invalid("emoji is required")
		}
		msgs := repository.Messages(tx)
		m, err := load(ctx, msgs, messageID, "message")
		if err != nil {
			return err
		}
		if _, err := participantConversation(ctx, tx, c, m.ConversationID); err != nil {
			return err
		}
		now := s.nowMs()
		m.ToggleReaction(c.ID(), emoji, now)
		m.UpdatedAt = now
		out = m
		return storeErr(msgs.Update(ctx, m), "message")
	})
	return out, err
}
