package realtime

import (
	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/wire"
)

// Dispatcher delivers typed events to every session subscribed to a target:
// a conversation room, a single user, or all registered sessions. Delivery is
// at-most-once per subscribed session per call and never blocks the caller;
// a session whose outbox is saturated is evicted as if it had disconnected.
type Dispatcher struct {
	registry *SessionRegistry
	rooms    *RoomIndex
	evict    func(*Session)
	log      *zap.SugaredLogger
}

func NewDispatcher(registry *SessionRegistry, rooms *RoomIndex, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		log:      log,
	}
}

// SetEvictFunc installs the teardown used for sessions whose transport cannot
// accept more buffered data. Set once at wiring time.
func (d *Dispatcher) SetEvictFunc(evict func(*Session)) {
	d.evict = evict
}

// EmitToRoom delivers the event to every session subscribed to the room at
// call time. A missing or empty room is a silent no-op; conversations can
// exist with no connected participants.
func (d *Dispatcher) EmitToRoom(roomID string, ev wire.Event) {
	d.deliver(d.rooms.SessionsIn(roomID), ev, "")
}

// EmitToRoomSkipping is EmitToRoom minus the named session, used to avoid
// echoing a client's own event back to it.
func (d *Dispatcher) EmitToRoomSkipping(roomID string, skipSessionID string, ev wire.Event) {
	d.deliver(d.rooms.SessionsIn(roomID), ev, skipSessionID)
}

// EmitToUser delivers the event to every live session of one user.
func (d *Dispatcher) EmitToUser(userID string, ev wire.Event) {
	d.deliver(d.registry.SessionsFor(userID), ev, "")
}

// Broadcast delivers the event to all currently-registered sessions.
func (d *Dispatcher) Broadcast(ev wire.Event) {
	d.deliver(d.registry.AllSessions(), ev, "")
}

func (d *Dispatcher) deliver(sessions []*Session, ev wire.Event, skipSessionID string) {
	for _, sess := range sessions {
		if skipSessionID != "" && sess.ID() == skipSessionID {
			continue
		}
		if sess.Send(ev) {
			continue
		}
		d.log.Warnf("outbound buffer saturated, evicting session %s (user %s)", sess.ID(), sess.UserID())
		if d.evict != nil {
			d.evict(sess)
		}
	}
}
