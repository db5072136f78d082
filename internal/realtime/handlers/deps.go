package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/store"
)

// ConversationQueries is the subset of conversation queries used by socket
// event handlers.
type ConversationQueries interface {
	ParticipantConversations(ctx context.Context, userID string) ([]string, error)
	IsParticipant(ctx context.Context, userID, conversationID string) (bool, error)
}

// MessageQueries is the subset of message queries used by socket event
// handlers.
type MessageQueries interface {
	Get(ctx context.Context, id string) (store.Message, error)
	MarkDelivered(ctx context.Context, messageID string) (bool, error)
}

// Deps holds the narrow dependencies required by socket event handlers.
type Deps struct {
	conversations ConversationQueries
	messages      MessageQueries
	now           func() time.Time
	newID         func() string
	log           *zap.SugaredLogger
}

// NewDeps builds a dependency bundle for handler calls.
func NewDeps(
	conversations ConversationQueries,
	messages MessageQueries,
	now func() time.Time,
	newID func() string,
	log *zap.SugaredLogger,
) Deps {
	return Deps{
		conversations: conversations,
		messages:      messages,
		now:           now,
		newID:         newID,
		log:           log,
	}
}

func (d Deps) Conversations() ConversationQueries { return d.conversations }
func (d Deps) Messages() MessageQueries           { return d.messages }

func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d Deps) NewID() string {
	if d.newID != nil {
		return d.newID()
	}
	return ""
}

func (d Deps) Log() *zap.SugaredLogger {
	if d.log != nil {
		return d.log
	}
	return zap.S()
}
