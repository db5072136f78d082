package realtime

import "sync"

const roomShardCount = 32

// RoomIndex maps conversation ids to the sessions subscribed to their events.
// It is an in-memory cache of the persisted participant set: a session joins
// the rooms of every conversation its user participates in at connect time,
// plus any room added later through an explicit join.
//
// Known staleness window: a user added to a conversation after their session
// connected does not receive that room's events until an explicit join or
// reconnect. This is deliberate; the index is never invalidated reactively
// from store changes.
type RoomIndex struct {
	registry *SessionRegistry

	rooms   [roomShardCount]roomShard   // room id -> sessions
	members [roomShardCount]memberShard // session id -> room ids
}

type roomShard struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session
}

type memberShard struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewRoomIndex(registry *SessionRegistry) *RoomIndex {
	idx := &RoomIndex{registry: registry}
	for i := range idx.rooms {
		idx.rooms[i].sessions = make(map[string]map[string]*Session)
	}
	for i := range idx.members {
		idx.members[i].rooms = make(map[string]map[string]struct{})
	}
	return idx
}

// JoinRoom subscribes a session to a room. Idempotent.
func (idx *RoomIndex) JoinRoom(sess *Session, roomID string) {
	shard := idx.roomShardFor(roomID)
	shard.mu.Lock()
	room, ok := shard.sessions[roomID]
	if !ok {
		room = make(map[string]*Session)
		shard.sessions[roomID] = room
	}
	room[sess.ID()] = sess
	shard.mu.Unlock()

	members := idx.memberShardFor(sess.ID())
	members.mu.Lock()
	rooms, ok := members.rooms[sess.ID()]
	if !ok {
		rooms = make(map[string]struct{})
		members.rooms[sess.ID()] = rooms
	}
	rooms[roomID] = struct{}{}
	members.mu.Unlock()
}

// JoinRoomForUsers subscribes every currently-registered session of the given
// users to the room. Users without live sessions are skipped; their next
// connection discovers the room through the participant lookup on connect.
func (idx *RoomIndex) JoinRoomForUsers(userIDs []string, roomID string) {
	for _, userID := range userIDs {
		for _, sess := range idx.registry.SessionsFor(userID) {
			idx.JoinRoom(sess, roomID)
		}
	}
}

// SessionsIn returns a snapshot of the sessions subscribed to a room. Empty
// slice for an unknown room.
func (idx *RoomIndex) SessionsIn(roomID string) []*Session {
	shard := idx.roomShardFor(roomID)

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	room := shard.sessions[roomID]
	result := make([]*Session, 0, len(room))
	for _, s := range room {
		result = append(result, s)
	}
	return result
}

// LeaveAll removes a session from every room it belongs to. Called on
// disconnect and on eviction.
func (idx *RoomIndex) LeaveAll(sess *Session) {
	members := idx.memberShardFor(sess.ID())

	members.mu.Lock()
	rooms := members.rooms[sess.ID()]
	delete(members.rooms, sess.ID())
	members.mu.Unlock()

	for roomID := range rooms {
		shard := idx.roomShardFor(roomID)
		shard.mu.Lock()
		if room, ok := shard.sessions[roomID]; ok {
			delete(room, sess.ID())
			if len(room) == 0 {
				delete(shard.sessions, roomID)
			}
		}
		shard.mu.Unlock()
	}
}

func (idx *RoomIndex) roomShardFor(roomID string) *roomShard {
	return &idx.rooms[shardIndex(roomID, roomShardCount)]
}

func (idx *RoomIndex) memberShardFor(sessionID string) *memberShard {
	return &idx.members[shardIndex(sessionID, roomShardCount)]
}
