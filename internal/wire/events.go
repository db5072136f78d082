package wire

// Event names emitted to subscribed sessions.
const (
	EventMessageNew       = "message:new"
	EventMessageStatus    = "message:status"
	EventMessageReact     = "message:react"
	EventMessageDelivered = "message:delivered"
	EventConversationNew  = "conversation:new"
	EventPresenceUpdate   = "presence:update"
	EventTyping           = "typing"
	EventOnlineUsers      = "onlineUsers"
)

// Event names accepted from clients.
const (
	ClientEventTyping           = "typing"
	ClientEventConversationJoin = "conversation:join"
	ClientEventMessageDelivered = "message:delivered"
	ClientEventMessageSend      = "message:send"
)

// Event is a single outbound realtime event. Events are fire-and-forget;
// durability belongs to the persistence layer, not this record.
type Event struct {
	Name    string
	Payload any
}

// Message status values. Delivered is terminal and never reverts.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
)
