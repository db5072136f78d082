package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/carrier-im/carrier/internal/api/middleware"
	"github.com/carrier-im/carrier/internal/store"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"lastSeen,omitempty"`
}

func (a *API) userResponse(u store.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Online:   a.realtime.IsOnline(u.ID),
		LastSeen: u.LastSeen,
	}
}

// ListUsers handles GET /v1/users. The online flag reflects live session
// state, not the persisted last-seen timestamp.
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		a.log.Errorf("failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": lo.Map(users, func(u store.User, _ int) userResponse {
			return a.userResponse(u)
		}),
	})
}

// Me handles GET /v1/users/me.
func (a *API) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		a.log.Errorf("failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, a.userResponse(user))
}
