package service

import (
	"context"
	"sort"

	"github.com/iliyamo/stylehub/internal/apperr"
	"github.com/iliyamo/stylehub/internal/auth"
	"github.com/iliyamo/stylehub/internal/model"
	"github.com/iliyamo/stylehub/internal/repository"
)

type ConversationService struct{ *core }

// ListMine returns the caller's conversations, most recently active first.
func (s *ConversationService) ListMine(ctx context.Context, id *auth.Identity, archived *bool, limit int) ([]model.Conversation, error) {
	var out []model.Conversation
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		convs := repository.Conversations(tx)
		a, err := convs.List(ctx, repository.ByParticipantA, c.ID())
		if err != nil {
			return storeErr(err, "conversation")
		}
		b, err := convs.List(ctx, repository.ByParticipantB, c.ID())
		if err != nil {
			return storeErr(err, "conversation")
		}
		all := append(a, b...)
		sort.SliceStable(all, func(i, j int) bool {
			if all[i].UpdatedAt != all[j].UpdatedAt {
				return all[i].UpdatedAt > all[j].UpdatedAt
			}
			return all[i].ID > all[j].ID
		})
		var keep func(model.Conversation) bool
		if archived != nil {
			want := *archived
			keep = func(cv model.Conversation) bool { return cv.IsArchived == want }
		}
		out = filterCap(all, keep, limit)
		return nil
	})
	return out, err
}

// GetWith returns the caller's conversation with otherID. The pair is
// unordered.
func (s *ConversationService) GetWith(ctx context.Context, id *auth.Identity, otherID string) (model.Conversation, error) {
	var out model.Conversation
	err := s.read(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		cv, err := repository.Conversations(tx).Find(ctx, repository.ByParticipantKey, model.ParticipantKey(c.ID(), otherID))
		out = cv
		return storeErr(err, "conversation")
	})
	return out, err
}

// Archive sets the archived flag. Participants only.
func (s *ConversationService) Archive(ctx context.Context, id *auth.Identity, conversationID string, archived bool) (model.Conversation, error) {
	var out model.Conversation
	err := s.write(ctx, id, func(tx repository.Tx, c auth.Caller) error {
		convs := repository.Conversations(tx)
		cv, err := load(ctx, convs, conversationID, "conversation")
		if err != nil {
			return err
		}
		if !cv.HasParticipant(c.ID()) {
			return apperr.Forbidden("not a participant of this conversation")
		}
		cv.IsArchived = archived
		cv.UpdatedAt = s.nowMs()
		out = cv
		return storeErr(convs.Update(ctx, cv), "conversation")
	})
	return out, err
}

// participantConversation loads a conversation the caller takes part in.
func participantConversation(ctx context.Context, tx repository.Tx, c auth.Caller, conversationID string) (model.Conversation, error) {
	cv, err := load(ctx, repository.Conversations(tx), conversationID, "conversation")
	if err != nil {
		return cv, err
	}
	if !cv.HasParticipant(c.ID()) {
		return cv, apperr.Forbidden("not a participant of this conversation")
	}
	return cv, nil
}
