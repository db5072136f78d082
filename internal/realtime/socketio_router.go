package realtime

import (
	"context"

	socket "github.com/zishang520/socket.io/servers/socket/v3"

	"github.com/carrier-im/carrier/internal/realtime/handlers"
	"github.com/carrier-im/carrier/internal/wire"
)

// registerClientHandlers wires the inbound event dispatch table for one
// active session.
func (s *SocketIOServer) registerClientHandlers(client *socket.Socket, sess *Session) {
	onTypedEvent(s, client, sess, wire.ClientEventTyping, handlers.Typing)
	onTypedEvent(s, client, sess, wire.ClientEventConversationJoin, handlers.ConversationJoin)
	onTypedEvent(s, client, sess, wire.ClientEventMessageDelivered, handlers.MessageDelivered)
	onTypedEvent(s, client, sess, wire.ClientEventMessageSend, handlers.MessageSend)

	client.On("disconnect", func(data ...any) {
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}
		s.log.Infof("user %s disconnected (session %s, reason: %s)", sess.UserID(), sess.ID(), reason)

		s.conns.Delete(sess.ID())
		s.teardown(sess)
	})
}

// onTypedEvent decodes the first event argument into Req, invokes the pure
// handler, and applies its result. A panicking handler is recovered and
// logged; it never tears down the connection or other sessions.
func onTypedEvent[Req any](
	s *SocketIOServer,
	client *socket.Socket,
	sess *Session,
	event string,
	handler func(context.Context, handlers.Deps, handlers.AuthContext, Req) handlers.EventResult,
) {
	client.On(event, func(data ...any) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("handler fault on %q (user %s, session %s): %v", event, sess.UserID(), sess.ID(), r)
			}
		}()

		var req Req
		if err := decodeAny(firstArg(data), &req); err != nil {
			s.log.Debugf("malformed %q payload (user %s, session %s): %v", event, sess.UserID(), sess.ID(), err)
		}

		auth := handlers.NewAuthContext(sess.UserID(), sess.ID())
		result := handler(context.Background(), s.deps, auth, req)

		s.applyResult(sess, result)
	})
}
