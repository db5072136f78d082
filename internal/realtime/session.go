package realtime

import (
	"sync"

	"github.com/carrier-im/carrier/internal/wire"
)

// DefaultOutboxCapacity bounds the per-session outbound buffer when no
// explicit capacity is configured.
const DefaultOutboxCapacity = 64

// EmitFunc delivers one named event to the underlying transport socket.
type EmitFunc func(event string, payload any)

// Session is one live transport connection belonging to exactly one
// authenticated user. Outbound events are buffered and drained by a single
// writer goroutine so that fanout never blocks on a slow client.
type Session struct {
	id     string
	userID string

	outbox    chan wire.Event
	emit      EmitFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session and starts its writer goroutine. capacity <= 0
// falls back to DefaultOutboxCapacity.
func NewSession(id, userID string, capacity int, emit EmitFunc) *Session {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	s := &Session{
		id:     id,
		userID: userID,
		outbox: make(chan wire.Event, capacity),
		emit:   emit,
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// ID returns the session (socket) id.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user's id.
func (s *Session) UserID() string { return s.userID }

// Send enqueues an event for delivery. It never blocks; false means the
// outbox is saturated (or the session is closed) and the session should be
// treated as dead.
func (s *Session) Send(ev wire.Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.outbox <- ev:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// Close stops the writer goroutine. Idempotent. Events still queued are
// dropped; the client refreshes state on reconnect.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) writeLoop() {
	for {
		select {
		case ev := <-s.outbox:
			s.emit(ev.Name, ev.Payload)
		case <-s.done:
			return
		}
	}
}
