package handlers

import (
	"context"

	"github.com/carrier-im/carrier/internal/store"
)

type fakeConversationQueries struct {
	participantConversations func(ctx context.Context, userID string) ([]string, error)
	isParticipant            func(ctx context.Context, userID, conversationID string) (bool, error)
}

func (f fakeConversationQueries) ParticipantConversations(ctx context.Context, userID string) ([]string, error) {
	return f.participantConversations(ctx, userID)
}

func (f fakeConversationQueries) IsParticipant(ctx context.Context, userID, conversationID string) (bool, error) {
	return f.isParticipant(ctx, userID, conversationID)
}

type fakeMessageQueries struct {
	get           func(ctx context.Context, id string) (store.Message, error)
	markDelivered func(ctx context.Context, messageID string) (bool, error)
}

func (f fakeMessageQueries) Get(ctx context.Context, id string) (store.Message, error) {
	return f.get(ctx, id)
}

func (f fakeMessageQueries) MarkDelivered(ctx context.Context, messageID string) (bool, error) {
	return f.markDelivered(ctx, messageID)
}
