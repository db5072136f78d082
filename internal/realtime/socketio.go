package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"
	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/crypto"
	"github.com/carrier-im/carrier/internal/realtime/handlers"
	"github.com/carrier-im/carrier/internal/wire"
)

// PingInterval defines how frequently the server pings clients to detect
// stale/disconnected sockets. This bounds how quickly a user flips offline
// after an abrupt client exit where no graceful disconnect is emitted.
const PingInterval = 5 * time.Second

// PingTimeout defines how long the server waits before considering a socket
// dead (no pong received).
const PingTimeout = 15 * time.Second

// Options configures the Socket.IO transport.
type Options struct {
	// Path is the HTTP path the Socket.IO endpoint is served on.
	Path string
	// OutboxCapacity bounds each session's outbound buffer.
	OutboxCapacity int
}

// SocketIOServer owns the realtime core (registry, room index, presence
// tracker, dispatcher) and adapts it to a Socket.IO transport. One instance
// is constructed empty at startup and shared by the socket endpoint and the
// REST handlers that emit events.
type SocketIOServer struct {
	server     *socket.Server
	jwtManager *crypto.JWTManager

	registry   *SessionRegistry
	rooms      *RoomIndex
	presence   *PresenceTracker
	dispatcher *Dispatcher

	deps      handlers.Deps
	outboxCap int
	log       *zap.SugaredLogger

	conns sync.Map // session id -> *connection
}

type connection struct {
	sess   *Session
	client *socket.Socket
}

// NewSocketIOServer creates the Socket.IO server and wires the realtime core
// together.
func NewSocketIOServer(
	jwtManager *crypto.JWTManager,
	users PresenceStore,
	conversations handlers.ConversationQueries,
	messages handlers.MessageQueries,
	opts Options,
	log *zap.SugaredLogger,
) *SocketIOServer {
	serverOpts := socket.DefaultServerOptions()
	serverOpts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})
	serverOpts.SetPingInterval(PingInterval)
	serverOpts.SetPingTimeout(PingTimeout)

	path := opts.Path
	if path == "" {
		path = "/ws"
	}
	serverOpts.SetPath(path)

	s := &SocketIOServer{
		server:     socket.NewServer(nil, serverOpts),
		jwtManager: jwtManager,
		outboxCap:  opts.OutboxCapacity,
		log:        log,
	}

	s.registry = NewSessionRegistry()
	s.rooms = NewRoomIndex(s.registry)
	s.dispatcher = NewDispatcher(s.registry, s.rooms, log)
	s.presence = NewPresenceTracker(s.registry, s.dispatcher, users, log)
	s.registry.SetPresenceHooks(s.presence.UserWentOnline, s.presence.UserWentOffline)
	s.dispatcher.SetEvictFunc(s.evictSession)

	s.deps = handlers.NewDeps(conversations, messages, time.Now, uuid.NewString, log)

	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client)
	})

	return s
}

// EmitToRoom exposes room fanout for REST handlers (new message persisted,
// reaction toggled, bulk delivery sweep).
func (s *SocketIOServer) EmitToRoom(roomID string, event string, payload any) {
	s.dispatcher.EmitToRoom(roomID, wire.Event{Name: event, Payload: payload})
}

// JoinRoomForUsers subscribes every live session of the given users to a
// room. Used on conversation creation so connected participants receive its
// events without reconnecting.
func (s *SocketIOServer) JoinRoomForUsers(userIDs []string, roomID string) {
	s.rooms.JoinRoomForUsers(userIDs, roomID)
}

// IsOnline reports derived presence for one user.
func (s *SocketIOServer) IsOnline(userID string) bool {
	return s.registry.IsOnline(userID)
}

// OnlineSnapshot returns the current online roster.
func (s *SocketIOServer) OnlineSnapshot() []string {
	return s.presence.OnlineSnapshot()
}

// HandleSocketIO creates a Gin handler for the Socket.IO endpoint.
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.Status(http.StatusOK)
			return
		}

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server.
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}

// teardown removes a session from every shared structure. Called on
// disconnect and on eviction; safe to call more than once.
func (s *SocketIOServer) teardown(sess *Session) {
	s.rooms.LeaveAll(sess)
	s.registry.Unregister(sess)
	sess.Close()
}

// evictSession handles a session whose transport cannot accept more buffered
// data: state is torn down as if it disconnected, then the transport socket
// is closed. No retry.
func (s *SocketIOServer) evictSession(sess *Session) {
	s.teardown(sess)
	if v, ok := s.conns.LoadAndDelete(sess.ID()); ok {
		if conn, ok := v.(*connection); ok && conn.client != nil {
			conn.client.Disconnect(true)
		}
	}
}

// applyResult executes a handler result against the shared state: room joins
// for the calling session, then the requested emissions.
func (s *SocketIOServer) applyResult(sess *Session, result handlers.EventResult) {
	for _, roomID := range result.Joins() {
		s.rooms.JoinRoom(sess, roomID)
	}

	for _, emit := range result.Emits() {
		switch {
		case emit.IsRoom():
			if emit.SkipSelf() {
				s.dispatcher.EmitToRoomSkipping(emit.RoomID(), sess.ID(), emit.Event())
			} else {
				s.dispatcher.EmitToRoom(emit.RoomID(), emit.Event())
			}
		case emit.IsUser():
			s.dispatcher.EmitToUser(emit.UserID(), emit.Event())
		case emit.IsBroadcast():
			s.dispatcher.Broadcast(emit.Event())
		}
	}
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func firstArg(data []any) any {
	if len(data) == 0 {
		return nil
	}
	return data[0]
}
