package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/carrier-im/carrier/internal/api/middleware"
	"github.com/carrier-im/carrier/internal/store"
	"github.com/carrier-im/carrier/internal/wire"
)

type sendMessageRequest struct {
	Text     string `json:"text"`
	ParentID string `json:"parentId"`
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

type messageResponse struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	SenderID       string          `json:"senderId"`
	Text           string          `json:"text"`
	Status         string          `json:"status"`
	ParentID       string          `json:"parentId,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	Reactions      []wire.Reaction `json:"reactions,omitempty"`
}

func messageToResponse(m store.Message, reactions []store.Reaction) messageResponse {
	return messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Body,
		Status:         m.Status,
		ParentID:       m.ParentID,
		CreatedAt:      m.CreatedAt.UnixMilli(),
		Reactions: lo.Map(reactions, func(r store.Reaction, _ int) wire.Reaction {
			return wire.Reaction{UserID: r.UserID, Emoji: r.Emoji}
		}),
	}
}

// ListMessages handles GET /v1/conversations/:id/messages.
func (a *API) ListMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	conversationID := c.Param("id")

	if !a.requireParticipant(c, userID, conversationID) {
		return
	}

	messages, err := a.messages.ListForConversation(c.Request.Context(), conversationID)
	if err != nil {
		a.log.Errorf("failed to list messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		reactions, err := a.messages.Reactions(c.Request.Context(), m.ID)
		if err != nil {
			a.log.Errorf("failed to load reactions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		out = append(out, messageToResponse(m, reactions))
	}

	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// SendMessage handles POST /v1/conversations/:id/messages. The message is
// persisted with status "sent", then fanned out to the conversation room.
func (a *API) SendMessage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	conversationID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	if !a.requireParticipant(c, userID, conversationID) {
		return
	}

	msg := store.Message{
		ID:             a.newID(),
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           req.Text,
		Status:         wire.MessageStatusSent,
		ParentID:       req.ParentID,
		CreatedAt:      a.now(),
	}
	if err := a.messages.Create(c.Request.Context(), msg); err != nil {
		a.log.Errorf("failed to create message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	a.realtime.EmitToRoom(conversationID, wire.EventMessageNew, wire.MessageNewPayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Text:           msg.Body,
		Status:         msg.Status,
		ParentID:       msg.ParentID,
		CreatedAt:      msg.CreatedAt.UnixMilli(),
	})

	c.JSON(http.StatusCreated, messageToResponse(msg, nil))
}

// MarkDelivered handles POST /v1/conversations/:id/delivered: the bulk
// sent->delivered sweep a client runs when it opens a conversation.
func (a *API) MarkDelivered(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	conversationID := c.Param("id")

	if !a.requireParticipant(c, userID, conversationID) {
		return
	}

	messageIDs, err := a.messages.MarkConversationDelivered(c.Request.Context(), conversationID)
	if err != nil {
		a.log.Errorf("failed to mark conversation delivered: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	a.realtime.EmitToRoom(conversationID, wire.EventMessageDelivered, wire.MessagesDeliveredPayload{
		ConversationID: conversationID,
		MessageIDs:     messageIDs,
	})

	c.JSON(http.StatusOK, gin.H{"messageIds": messageIDs})
}

// React handles POST /v1/conversations/:id/messages/:messageId/react. A
// repeated (user, emoji) pair removes the reaction.
func (a *API) React(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	conversationID := c.Param("id")
	messageID := c.Param("messageId")

	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Emoji == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emoji is required"})
		return
	}

	if !a.requireParticipant(c, userID, conversationID) {
		return
	}

	msg, err := a.messages.Get(c.Request.Context(), messageID)
	if err == store.ErrNotFound || (err == nil && msg.ConversationID != conversationID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	if err != nil {
		a.log.Errorf("failed to load message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	reactions, err := a.messages.ToggleReaction(c.Request.Context(), messageID, userID, req.Emoji)
	if err != nil {
		a.log.Errorf("failed to toggle reaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	payload := wire.MessageReactPayload{
		ConversationID: conversationID,
		MessageID:      messageID,
		Reactions: lo.Map(reactions, func(r store.Reaction, _ int) wire.Reaction {
			return wire.Reaction{UserID: r.UserID, Emoji: r.Emoji}
		}),
	}
	a.realtime.EmitToRoom(conversationID, wire.EventMessageReact, payload)

	c.JSON(http.StatusOK, gin.H{"reactions": payload.Reactions})
}

// SearchMessages handles GET /v1/conversations/:id/messages/search?q=.
func (a *API) SearchMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	conversationID := c.Param("id")

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	if !a.requireParticipant(c, userID, conversationID) {
		return
	}

	messages, err := a.messages.SearchInConversation(c.Request.Context(), conversationID, query)
	if err != nil {
		a.log.Errorf("failed to search messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": lo.Map(messages, func(m store.Message, _ int) messageResponse {
		return messageToResponse(m, nil)
	})})
}

// SearchAllMessages handles GET /v1/messages/search?q=, searching across
// every conversation the caller participates in.
func (a *API) SearchAllMessages(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	messages, err := a.messages.SearchForUser(c.Request.Context(), userID, query)
	if err != nil {
		a.log.Errorf("failed to search messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": lo.Map(messages, func(m store.Message, _ int) messageResponse {
		return messageToResponse(m, nil)
	})})
}
