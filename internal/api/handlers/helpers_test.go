package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/api/middleware"
	"github.com/carrier-im/carrier/internal/crypto"
	"github.com/carrier-im/carrier/internal/database"
	"github.com/carrier-im/carrier/internal/store"
)

type roomEmit struct {
	roomID  string
	event   string
	payload any
}

type joinCall struct {
	userIDs []string
	roomID  string
}

type fakeRealtime struct {
	emits  []roomEmit
	joins  []joinCall
	online map[string]bool
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{online: make(map[string]bool)}
}

func (f *fakeRealtime) EmitToRoom(roomID string, event string, payload any) {
	f.emits = append(f.emits, roomEmit{roomID: roomID, event: event, payload: payload})
}

func (f *fakeRealtime) JoinRoomForUsers(userIDs []string, roomID string) {
	f.joins = append(f.joins, joinCall{userIDs: userIDs, roomID: roomID})
}

func (f *fakeRealtime) IsOnline(userID string) bool {
	return f.online[userID]
}

func (f *fakeRealtime) OnlineSnapshot() []string {
	var users []string
	for id, on := range f.online {
		if on {
			users = append(users, id)
		}
	}
	return users
}

type testEnv struct {
	engine   *gin.Engine
	realtime *fakeRealtime
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jwtManager, err := crypto.NewJWTManager("test-secret")
	require.NoError(t, err)

	realtime := newFakeRealtime()

	idCounter := 0
	newID := func() string {
		idCounter++
		return fmt.Sprintf("id-%d", idCounter)
	}

	api := NewAPI(
		store.NewUsers(db.DB),
		store.NewConversations(db.DB),
		store.NewMessages(db.DB),
		jwtManager,
		realtime,
		zap.NewNop().Sugar(),
		func() time.Time { return time.UnixMilli(50000) },
		newID,
	)

	engine := gin.New()
	v1 := engine.Group("/v1")
	v1.POST("/auth/register", api.Register)
	v1.POST("/auth/login", api.Login)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	protected.GET("/users", api.ListUsers)
	protected.GET("/users/me", api.Me)
	protected.GET("/conversations", api.ListConversations)
	protected.POST("/conversations", api.CreateConversation)
	protected.GET("/conversations/:id/messages", api.ListMessages)
	protected.POST("/conversations/:id/messages", api.SendMessage)
	protected.GET("/conversations/:id/messages/search", api.SearchMessages)
	protected.POST("/conversations/:id/messages/:messageId/react", api.React)
	protected.POST("/conversations/:id/delivered", api.MarkDelivered)
	protected.GET("/messages/search", api.SearchAllMessages)

	return &testEnv{engine: engine, realtime: realtime}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerUser registers a user and returns (token, userID).
func (e *testEnv) registerUser(t *testing.T, username string) (string, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"name":     username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.User.ID)
	return resp.Token, resp.User.ID
}

// createConversation creates a conversation with the given participants and
// returns its id.
func (e *testEnv) createConversation(t *testing.T, token string, usernames ...string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/v1/conversations", token, map[string]any{
		"participantUsernames": usernames,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}
