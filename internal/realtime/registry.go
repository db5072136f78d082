package realtime

import (
	"hash/fnv"
	"sync"
)

const registryShardCount = 32

// SessionRegistry maps authenticated user ids to their live sessions. A user
// may hold several sessions at once (multiple devices/tabs); the registry
// entry for a user exists exactly while its session set is non-empty.
//
// Locking is sharded by user id so unrelated users' connect storms do not
// serialize each other. The online/offline determination happens inside the
// shard lock together with the mutation, so no caller can observe a user as
// simultaneously online and offline.
type SessionRegistry struct {
	shards [registryShardCount]registryShard

	// Presence transition hooks, invoked outside the shard lock. Set once
	// at wiring time, before any session connects.
	onOnline  func(userID string)
	onOffline func(userID string)
}

type registryShard struct {
	mu    sync.RWMutex
	users map[string]map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	r := &SessionRegistry{}
	for i := range r.shards {
		r.shards[i].users = make(map[string]map[string]*Session)
	}
	return r
}

// SetPresenceHooks installs the 0->1 and 1->0 transition callbacks.
func (r *SessionRegistry) SetPresenceHooks(onOnline, onOffline func(userID string)) {
	r.onOnline = onOnline
	r.onOffline = onOffline
}

// Register adds a session to its user's session set. Idempotent when the
// session is already present.
func (r *SessionRegistry) Register(sess *Session) {
	shard := r.shardFor(sess.UserID())

	shard.mu.Lock()
	sessions, existed := shard.users[sess.UserID()]
	if !existed {
		sessions = make(map[string]*Session)
		shard.users[sess.UserID()] = sessions
	}
	sessions[sess.ID()] = sess
	wentOnline := !existed
	shard.mu.Unlock()

	if wentOnline && r.onOnline != nil {
		r.onOnline(sess.UserID())
	}
}

// Unregister removes a session from its user's session set. Safe to call on
// an unknown session. When the set becomes empty the user's entry is removed
// and the offline hook fires.
func (r *SessionRegistry) Unregister(sess *Session) {
	shard := r.shardFor(sess.UserID())

	shard.mu.Lock()
	sessions, ok := shard.users[sess.UserID()]
	if !ok {
		shard.mu.Unlock()
		return
	}
	if _, ok := sessions[sess.ID()]; !ok {
		shard.mu.Unlock()
		return
	}
	delete(sessions, sess.ID())
	wentOffline := len(sessions) == 0
	if wentOffline {
		delete(shard.users, sess.UserID())
	}
	shard.mu.Unlock()

	if wentOffline && r.onOffline != nil {
		r.onOffline(sess.UserID())
	}
}

// SessionsFor returns a snapshot of the user's live sessions. Empty slice if
// the user is unknown.
func (r *SessionRegistry) SessionsFor(userID string) []*Session {
	shard := r.shardFor(userID)

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	sessions := shard.users[userID]
	result := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, s)
	}
	return result
}

// IsOnline reports whether the user has at least one live session.
func (r *SessionRegistry) IsOnline(userID string) bool {
	shard := r.shardFor(userID)

	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return len(shard.users[userID]) > 0
}

// OnlineUsers returns a snapshot of every user with a live session.
func (r *SessionRegistry) OnlineUsers() []string {
	var users []string
	for i := range r.shards {
		shard := &r.shards[i]
		shard.mu.RLock()
		for userID := range shard.users {
			users = append(users, userID)
		}
		shard.mu.RUnlock()
	}
	return users
}

// AllSessions returns a snapshot of every live session across all users.
func (r *SessionRegistry) AllSessions() []*Session {
	var sessions []*Session
	for i := range r.shards {
		shard := &r.shards[i]
		shard.mu.RLock()
		for _, userSessions := range shard.users {
			for _, s := range userSessions {
				sessions = append(sessions, s)
			}
		}
		shard.mu.RUnlock()
	}
	return sessions
}

func (r *SessionRegistry) shardFor(userID string) *registryShard {
	return &r.shards[shardIndex(userID, registryShardCount)]
}

func shardIndex(key string, shards int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(shards))
}
