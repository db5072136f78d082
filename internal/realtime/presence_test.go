package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carrier-im/carrier/internal/wire"
)

type fakeEmitter struct {
	events []wire.Event
}

func (f *fakeEmitter) Broadcast(ev wire.Event) {
	f.events = append(f.events, ev)
}

type fakePresenceStore struct {
	recorded func(userID string, at time.Time) error
}

func (f *fakePresenceStore) RecordLastSeen(ctx context.Context, userID string, at time.Time) error {
	if f.recorded == nil {
		return nil
	}
	return f.recorded(userID, at)
}

func TestPresenceOnlineBroadcastsUpdateAndRoster(t *testing.T) {
	registry := NewSessionRegistry()
	emitter := &fakeEmitter{}
	tracker := NewPresenceTracker(registry, emitter, &fakePresenceStore{}, zap.NewNop().Sugar())

	sess := newTestSession("s1", "u1")
	defer sess.Close()
	registry.Register(sess)

	tracker.UserWentOnline("u1")

	require.Len(t, emitter.events, 2)
	require.Equal(t, wire.EventPresenceUpdate, emitter.events[0].Name)

	update, ok := emitter.events[0].Payload.(wire.PresenceUpdatePayload)
	require.True(t, ok)
	require.Equal(t, "u1", update.UserID)
	require.True(t, update.Online)
	require.Zero(t, update.LastSeen)

	require.Equal(t, wire.EventOnlineUsers, emitter.events[1].Name)
	roster, ok := emitter.events[1].Payload.(wire.OnlineUsersPayload)
	require.True(t, ok)
	require.Equal(t, []string{"u1"}, roster.UserIDs)
}

func TestPresenceOfflineRecordsLastSeen(t *testing.T) {
	registry := NewSessionRegistry()
	emitter := &fakeEmitter{}

	var storedUser string
	var storedAt time.Time
	store := &fakePresenceStore{
		recorded: func(userID string, at time.Time) error {
			storedUser = userID
			storedAt = at
			return nil
		},
	}

	tracker := NewPresenceTracker(registry, emitter, store, zap.NewNop().Sugar())
	now := time.UnixMilli(99000)
	tracker.now = func() time.Time { return now }

	tracker.UserWentOffline("u1")

	require.Equal(t, "u1", storedUser)
	require.Equal(t, now, storedAt)

	require.Len(t, emitter.events, 2)
	update, ok := emitter.events[0].Payload.(wire.PresenceUpdatePayload)
	require.True(t, ok)
	require.False(t, update.Online)
	require.Equal(t, int64(99000), update.LastSeen)

	roster, ok := emitter.events[1].Payload.(wire.OnlineUsersPayload)
	require.True(t, ok)
	require.Empty(t, roster.UserIDs)
}

func TestPresenceOfflineBroadcastDespiteStoreError(t *testing.T) {
	registry := NewSessionRegistry()
	emitter := &fakeEmitter{}
	store := &fakePresenceStore{
		recorded: func(userID string, at time.Time) error {
			return context.DeadlineExceeded
		},
	}
	tracker := NewPresenceTracker(registry, emitter, store, zap.NewNop().Sugar())

	tracker.UserWentOffline("u1")

	require.Len(t, emitter.events, 2)
}

func TestPresenceSnapshotIsSorted(t *testing.T) {
	registry := NewSessionRegistry()
	tracker := NewPresenceTracker(registry, &fakeEmitter{}, &fakePresenceStore{}, zap.NewNop().Sugar())

	for _, id := range []string{"s1", "s2", "s3"} {
		sess := newTestSession(id, "user-"+id)
		defer sess.Close()
		registry.Register(sess)
	}

	require.Equal(t, []string{"user-s1", "user-s2", "user-s3"}, tracker.OnlineSnapshot())
}
