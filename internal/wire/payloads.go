package wire

// SocketAuthPayload is the handshake auth object supplied at connect time.
type SocketAuthPayload struct {
	Token string `json:"token"`
}

// PresenceUpdatePayload announces a single user's presence transition.
// LastSeen is set (unix millis) only on the offline transition.
type PresenceUpdatePayload struct {
	UserID   string `json:"userId"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"lastSeen,omitempty"`
}

// OnlineUsersPayload is the full online-roster snapshot.
type OnlineUsersPayload struct {
	UserIDs []string `json:"userIds"`
}

// TypingPayload is fanned out to a conversation room, excluding the sender.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
}

// MessageNewPayload carries a freshly persisted (or passthrough) message.
type MessageNewPayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Text           string `json:"text"`
	Status         string `json:"status"`
	ParentID       string `json:"parentId,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
}

// MessageStatusPayload announces a single message status transition.
type MessageStatusPayload struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	Status         string `json:"status"`
}

// MessagesDeliveredPayload announces a bulk sent->delivered sweep for a
// conversation.
type MessagesDeliveredPayload struct {
	ConversationID string   `json:"conversationId"`
	MessageIDs     []string `json:"messageIds"`
}

// Reaction is one user's emoji reaction on a message.
type Reaction struct {
	UserID string `json:"userId"`
	Emoji  string `json:"emoji"`
}

// MessageReactPayload carries the full reaction set after a toggle.
type MessageReactPayload struct {
	ConversationID string     `json:"conversationId"`
	MessageID      string     `json:"messageId"`
	Reactions      []Reaction `json:"reactions"`
}

// ParticipantSummary is the minimal participant projection sent to clients.
type ParticipantSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"lastSeen,omitempty"`
}

// ConversationNewPayload announces a newly created conversation to the
// sessions that were joined to its room at creation time.
type ConversationNewPayload struct {
	ID           string               `json:"id"`
	Name         string               `json:"name,omitempty"`
	IsGroup      bool                 `json:"isGroup"`
	Participants []ParticipantSummary `json:"participants"`
}

// Inbound client payloads.

type TypingRequest struct {
	ConversationID string `json:"conversationId"`
	Username       string `json:"username"`
}

type ConversationJoinRequest struct {
	ConversationID string `json:"conversationId"`
}

type MessageDeliveredRequest struct {
	MessageID string `json:"messageId"`
}

// MessageSendRequest is the direct socket passthrough variant. The REST
// endpoint remains the persisting path; this one only fans out.
type MessageSendRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	ParentID       string `json:"parentId,omitempty"`
}
