package handlers

import (
	"context"
)

// Connect computes the room subscriptions for a freshly authenticated
// session: one room per conversation its user currently participates in.
// This is the catch-up point for any membership the user gained while
// disconnected.
func Connect(ctx context.Context, deps Deps, auth AuthContext) EventResult {
	conversations, err := deps.Conversations().ParticipantConversations(ctx, auth.UserID())
	if err != nil {
		deps.Log().Warnf("failed to load conversations for user %s: %v", auth.UserID(), err)
		return NewEventResult(nil, nil)
	}

	return NewEventResult(conversations, nil)
}
