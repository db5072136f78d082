package handlers

import (
	"context"

	"github.com/carrier-im/carrier/internal/wire"
)

// MessageDelivered applies the client-driven per-message delivery ack:
// sent -> delivered, delivered terminal. A status-update event is broadcast
// to the room only when the transition actually changed state, so duplicate
// acks never re-broadcast no-op updates.
func MessageDelivered(ctx context.Context, deps Deps, auth AuthContext, req wire.MessageDeliveredRequest) EventResult {
	if req.MessageID == "" {
		return NewEventResult(nil, nil)
	}

	msg, err := deps.Messages().Get(ctx, req.MessageID)
	if err != nil {
		deps.Log().Debugf("delivery ack for unknown message %s from user %s: %v", req.MessageID, auth.UserID(), err)
		return NewEventResult(nil, nil)
	}

	member, err := deps.Conversations().IsParticipant(ctx, auth.UserID(), msg.ConversationID)
	if err != nil {
		deps.Log().Warnf("membership check failed for user %s, conversation %s: %v", auth.UserID(), msg.ConversationID, err)
		return NewEventResult(nil, nil)
	}
	if !member {
		return NewEventResult(nil, nil)
	}

	changed, err := deps.Messages().MarkDelivered(ctx, req.MessageID)
	if err != nil {
		deps.Log().Warnf("failed to mark message %s delivered: %v", req.MessageID, err)
		return NewEventResult(nil, nil)
	}
	if !changed {
		return NewEventResult(nil, nil)
	}

	return NewEventResult(nil, []EmitInstruction{
		newRoomEmit(msg.ConversationID, wire.Event{
			Name: wire.EventMessageStatus,
			Payload: wire.MessageStatusPayload{
				ConversationID: msg.ConversationID,
				MessageID:      req.MessageID,
				Status:         wire.MessageStatusDelivered,
			},
		}),
	})
}
