package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/crypto"
	"github.com/carrier-im/carrier/internal/store"
)

// Realtime is the narrow gateway the REST handlers use to reach connected
// clients. Implemented by the Socket.IO server; faked in tests.
type Realtime interface {
	EmitToRoom(roomID string, event string, payload any)
	JoinRoomForUsers(userIDs []string, roomID string)
	IsOnline(userID string) bool
	OnlineSnapshot() []string
}

// API bundles the dependencies of the HTTP handlers.
type API struct {
	users         *store.Users
	conversations *store.Conversations
	messages      *store.Messages
	jwtManager    *crypto.JWTManager
	realtime      Realtime
	log           *zap.SugaredLogger

	now   func() time.Time
	newID func() string
}

// NewAPI creates the HTTP handler set.
func NewAPI(
	users *store.Users,
	conversations *store.Conversations,
	messages *store.Messages,
	jwtManager *crypto.JWTManager,
	realtime Realtime,
	log *zap.SugaredLogger,
	now func() time.Time,
	newID func() string,
) *API {
	return &API{
		users:         users,
		conversations: conversations,
		messages:      messages,
		jwtManager:    jwtManager,
		realtime:      realtime,
		log:           log,
		now:           now,
		newID:         newID,
	}
}
