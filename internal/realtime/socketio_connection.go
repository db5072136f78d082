package realtime

import (
	"context"

	socket "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/carrier-im/carrier/internal/realtime/handlers"
	"github.com/carrier-im/carrier/internal/wire"
)

// handleConnection drives a connection attempt through its lifecycle:
// verify the credential, register the session, join the rooms of the user's
// conversations, then hand off to the per-event handlers. Authentication
// failure closes the connection without touching any shared state.
func (s *SocketIOServer) handleConnection(client *socket.Socket) {
	sessionID := string(client.Id())

	s.log.Infof("socket connection attempt (session %s)", sessionID)

	var authPayload wire.SocketAuthPayload
	if err := decodeAny(client.Handshake().Auth, &authPayload); err != nil {
		s.log.Warnf("invalid auth data (session %s): %v", sessionID, err)
		client.Emit("error", map[string]string{"message": "invalid authentication data"})
		client.Disconnect(true)
		return
	}

	handshake, err := handlers.ValidateSocketAuthPayload(authPayload)
	if err != nil {
		s.log.Warnf("handshake rejected (session %s): %v", sessionID, err)
		client.Emit("error", map[string]string{"message": err.Error()})
		client.Disconnect(true)
		return
	}

	claims, err := s.jwtManager.VerifyToken(handshake.Token)
	if err != nil {
		s.log.Warnf("invalid token (session %s): %v", sessionID, err)
		client.Emit("error", map[string]string{"message": "invalid authentication token"})
		client.Disconnect(true)
		return
	}
	userID := claims.Subject

	sess := NewSession(sessionID, userID, s.outboxCap, func(event string, payload any) {
		client.Emit(event, payload)
	})
	s.conns.Store(sessionID, &connection{sess: sess, client: client})

	// Registering may fire the 0->1 presence transition and its broadcasts.
	s.registry.Register(sess)

	// Membership lookup runs outside any registry lock.
	result := handlers.Connect(context.Background(), s.deps, handlers.NewAuthContext(userID, sessionID))
	s.applyResult(sess, result)

	// The new session always gets the current roster, even when its user was
	// already online through another session.
	sess.Send(wire.Event{
		Name:    wire.EventOnlineUsers,
		Payload: wire.OnlineUsersPayload{UserIDs: s.presence.OnlineSnapshot()},
	})

	s.log.Infof("socket client ready (user %s, session %s)", userID, sessionID)

	s.registerClientHandlers(client, sess)
}
