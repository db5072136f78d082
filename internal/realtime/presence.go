package realtime

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/wire"
)

// PresenceStore is the external user store slice used by the tracker. The
// only durable side effect of presence is recording lastSeen on the offline
// transition.
type PresenceStore interface {
	RecordLastSeen(ctx context.Context, userID string, at time.Time) error
}

// Emitter is the fanout slice the tracker broadcasts through.
type Emitter interface {
	Broadcast(ev wire.Event)
}

// PresenceTracker derives online/offline status from registry occupancy.
// Presence is never requested or stored as its own flag; it is computed from
// actual connectivity, so it cannot drift.
type PresenceTracker struct {
	registry *SessionRegistry
	emitter  Emitter
	store    PresenceStore
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewPresenceTracker(registry *SessionRegistry, emitter Emitter, store PresenceStore, log *zap.SugaredLogger) *PresenceTracker {
	return &PresenceTracker{
		registry: registry,
		emitter:  emitter,
		store:    store,
		now:      time.Now,
		log:      log,
	}
}

// UserWentOnline handles the 0->1 session transition for a user.
func (t *PresenceTracker) UserWentOnline(userID string) {
	t.log.Debugf("user %s went online", userID)

	t.emitter.Broadcast(wire.Event{
		Name: wire.EventPresenceUpdate,
		Payload: wire.PresenceUpdatePayload{
			UserID: userID,
			Online: true,
		},
	})
	t.broadcastRoster()
}

// UserWentOffline handles the 1->0 session transition for a user, recording
// the lastSeen timestamp captured at the moment the session count hit zero.
func (t *PresenceTracker) UserWentOffline(userID string) {
	lastSeen := t.now()
	t.log.Debugf("user %s went offline", userID)

	if err := t.store.RecordLastSeen(context.Background(), userID, lastSeen); err != nil {
		t.log.Warnf("failed to record last seen for user %s: %v", userID, err)
	}

	t.emitter.Broadcast(wire.Event{
		Name: wire.EventPresenceUpdate,
		Payload: wire.PresenceUpdatePayload{
			UserID:   userID,
			Online:   false,
			LastSeen: lastSeen.UnixMilli(),
		},
	})
	t.broadcastRoster()
}

// OnlineSnapshot returns the current online users, sorted for stable output.
func (t *PresenceTracker) OnlineSnapshot() []string {
	users := t.registry.OnlineUsers()
	sort.Strings(users)
	return users
}

func (t *PresenceTracker) broadcastRoster() {
	t.emitter.Broadcast(wire.Event{
		Name:    wire.EventOnlineUsers,
		Payload: wire.OnlineUsersPayload{UserIDs: t.OnlineSnapshot()},
	})
}
