package handlers

import (
	"context"

	"github.com/carrier-im/carrier/internal/wire"
)

// ConversationJoin subscribes the calling session to a conversation room
// after re-validating membership against the store. Unauthorized joins are
// silently ignored so non-members cannot probe for conversation existence.
func ConversationJoin(ctx context.Context, deps Deps, auth AuthContext, req wire.ConversationJoinRequest) EventResult {
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

	return NewEventResult([]string{req.ConversationID}, nil)
}
