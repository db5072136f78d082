package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/carrier-im/carrier/internal/api/middleware"
	"github.com/carrier-im/carrier/internal/store"
	"github.com/carrier-im/carrier/internal/wire"
)

type createConversationRequest struct {
	Name                 string   `json:"name"`
	IsGroup              bool     `json:"isGroup"`
	ParticipantUsernames []string `json:"participantUsernames"`
}

type lastMessageResponse struct {
	Text      string `json:"text"`
	SenderID  string `json:"senderId"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
}

type conversationResponse struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name,omitempty"`
	IsGroup      bool                      `json:"isGroup"`
	CreatedAt    int64                     `json:"createdAt"`
	Participants []wire.ParticipantSummary `json:"participants"`
	LastMessage  *lastMessageResponse      `json:"lastMessage,omitempty"`
}

// ListConversations handles GET /v1/conversations.
func (a *API) ListConversations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	summaries, err := a.conversations.ListForUser(c.Request.Context(), userID)
	if err != nil {
		a.log.Errorf("failed to list conversations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]conversationResponse, 0, len(summaries))
	for _, summary := range summaries {
		participants, err := a.participantSummaries(c, summary.ParticipantIDs)
		if err != nil {
			a.log.Errorf("failed to load participants: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := conversationResponse{
			ID:           summary.ID,
			Name:         summary.Name,
			IsGroup:      summary.IsGroup,
			CreatedAt:    summary.CreatedAt.UnixMilli(),
			Participants: participants,
		}
		if summary.LastMessage != nil {
			resp.LastMessage = &lastMessageResponse{
				Text:      summary.LastMessage.Text,
				SenderID:  summary.LastMessage.SenderID,
				Status:    summary.LastMessage.Status,
				CreatedAt: summary.LastMessage.CreatedAt.UnixMilli(),
			}
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// CreateConversation handles POST /v1/conversations. Every live session of a
// participant is joined to the new room immediately, then the creation event
// is fanned out to that room.
func (a *API) CreateConversation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if len(req.ParticipantUsernames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one participant is required"})
		return
	}

	others, err := a.users.GetByUsernames(c.Request.Context(), req.ParticipantUsernames)
	if err != nil {
		a.log.Errorf("failed to resolve participants: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if len(others) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no matching participants"})
		return
	}

	participantIDs := lo.Uniq(append(
		lo.Map(others, func(u store.User, _ int) string { return u.ID }),
		userID,
	))

	conv := store.Conversation{
		ID:        a.newID(),
		Name:      req.Name,
		IsGroup:   req.IsGroup,
		CreatedAt: a.now(),
	}
	if err := a.conversations.Create(c.Request.Context(), conv, participantIDs); err != nil {
		a.log.Errorf("failed to create conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	participants, err := a.participantSummaries(c, participantIDs)
	if err != nil {
		a.log.Errorf("failed to load participants: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// Join first so the announcement below reaches every connected
	// participant, including those who were never in this room.
	a.realtime.JoinRoomForUsers(participantIDs, conv.ID)
	a.realtime.EmitToRoom(conv.ID, wire.EventConversationNew, wire.ConversationNewPayload{
		ID:           conv.ID,
		Name:         conv.Name,
		IsGroup:      conv.IsGroup,
		Participants: participants,
	})

	a.log.Infof("conversation created: %s (%d participants)", conv.ID, len(participantIDs))

	c.JSON(http.StatusCreated, conversationResponse{
		ID:           conv.ID,
		Name:         conv.Name,
		IsGroup:      conv.IsGroup,
		CreatedAt:    conv.CreatedAt.UnixMilli(),
		Participants: participants,
	})
}

func (a *API) participantSummaries(c *gin.Context, userIDs []string) ([]wire.ParticipantSummary, error) {
	summaries := make([]wire.ParticipantSummary, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := a.users.GetByID(c.Request.Context(), id)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, wire.ParticipantSummary{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Avatar:   user.Avatar,
			Online:   a.realtime.IsOnline(user.ID),
			LastSeen: user.LastSeen,
		})
	}
	return summaries, nil
}

// requireParticipant loads the conversation membership check shared by the
// message endpoints. It writes the error response itself and reports whether
// the caller may proceed.
func (a *API) requireParticipant(c *gin.Context, userID, conversationID string) bool {
	member, err := a.conversations.IsParticipant(c.Request.Context(), userID, conversationID)
	if err != nil {
		a.log.Errorf("failed to check membership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
		return false
	}
	return true
}
