package handlers

import (
	"context"

	"github.com/carrier-im/carrier/internal/wire"
)

// Typing fans a typing indicator out to the conversation room, excluding the
// sender's own session. Typing events are best-effort and carry no
// persistence. Membership is re-validated so a non-member cannot spoof an
// indicator into a room it never belonged to.
func Typing(ctx context.Context, deps Deps, auth AuthContext, req wire.TypingRequest) EventResult {
	if req.ConversationID == "" {
		return NewEventResult(nil, nil)
	}

	member, err := deps.Conversations().IsParticipant(ctx, auth.UserID(), req.ConversationID)
	if err != nil {
		deps.Log().Warnf("membership check failed for user %s, conversation %s: %v", auth.UserID(), req.ConversationID, err)
		return NewEventResult(nil, nil)
	}
	if !member {
		return NewEventResult(nil, nil)
	}

	return NewEventResult(nil, []EmitInstruction{
		newRoomEmitSkippingSelf(req.ConversationID, wire.Event{
			Name: wire.EventTyping,
			Payload: wire.TypingPayload{
				ConversationID: req.ConversationID,
				UserID:         auth.UserID(),
				Username:       req.Username,
			},
		}),
	})
}
