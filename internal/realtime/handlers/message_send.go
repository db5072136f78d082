package handlers

import (
	"context"

	"github.com/carrier-im/carrier/internal/wire"
)

// MessageSend is the direct socket passthrough: the message is fanned out to
// the conversation room without touching the store. Durable sends go through
// the REST endpoint; this path exists for clients that emit directly over
// the socket. Membership is re-validated so a non-member cannot inject
// events into a room it never joined.
func MessageSend(ctx context.Context, deps Deps, auth AuthContext, req wire.MessageSendRequest) EventResult {
	if req.ConversationID == "" || req.Text == "" {
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
		newRoomEmit(req.ConversationID, wire.Event{
			Name: wire.EventMessageNew,
			Payload: wire.MessageNewPayload{
				ID:             deps.NewID(),
				ConversationID: req.ConversationID,
				SenderID:       auth.UserID(),
				Text:           req.Text,
				Status:         wire.MessageStatusSent,
				ParentID:       req.ParentID,
				CreatedAt:      deps.Now().UnixMilli(),
			},
		}),
	})
}
