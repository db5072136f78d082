package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carrier-im/carrier/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, users *Users, id, username string) {
	t.Helper()
	err := users.Create(context.Background(), User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: "hash",
		CreatedAt:    time.UnixMilli(1000),
	})
	require.NoError(t, err)
}

func seedConversation(t *testing.T, conversations *Conversations, id string, participantIDs []string) {
	t.Helper()
	err := conversations.Create(context.Background(), Conversation{
		ID:        id,
		CreatedAt: time.UnixMilli(2000),
	}, participantIDs)
	require.NoError(t, err)
}

func TestUsersCreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")

	byID, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
	require.Zero(t, byID.LastSeen)

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", byName.ID)

	_, err = users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := users.Exists(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = users.Exists(ctx, "bob", "bob@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUsersRecordLastSeen(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")

	at := time.UnixMilli(123456)
	require.NoError(t, users.RecordLastSeen(ctx, "u1", at))

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(123456), u.LastSeen)
}

func TestUsersGetByUsernamesSkipsUnknown(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")

	found, err := users.GetByUsernames(context.Background(), []string{"alice", "ghost", "bob"})
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestConversationsMembership(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")
	seedUser(t, users, "u3", "carol")
	seedConversation(t, conversations, "c1", []string{"u1", "u2"})
	seedConversation(t, conversations, "c2", []string{"u1", "u3"})

	member, err := conversations.IsParticipant(ctx, "u2", "c1")
	require.NoError(t, err)
	require.True(t, member)

	member, err = conversations.IsParticipant(ctx, "u3", "c1")
	require.NoError(t, err)
	require.False(t, member)

	ids, err := conversations.ParticipantConversations(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c1", "c2"}, ids)

	participants, err := conversations.ParticipantIDs(ctx, "c1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, participants)
}

func TestConversationsListForUserIncludesLastMessage(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")
	seedConversation(t, conversations, "c1", []string{"u1", "u2"})

	require.NoError(t, messages.Create(ctx, Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "first", CreatedAt: time.UnixMilli(3000),
	}))
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m2", ConversationID: "c1", SenderID: "u2", Body: "second", CreatedAt: time.UnixMilli(4000),
	}))

	summaries, err := conversations.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.ElementsMatch(t, []string{"u1", "u2"}, summaries[0].ParticipantIDs)
	require.NotNil(t, summaries[0].LastMessage)
	require.Equal(t, "second", summaries[0].LastMessage.Text)
}

func TestMessagesDeliveredTransitionIsTerminal(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedConversation(t, conversations, "c1", []string{"u1"})
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "hi", CreatedAt: time.UnixMilli(3000),
	}))

	changed, err := messages.MarkDelivered(ctx, "m1")
	require.NoError(t, err)
	require.True(t, changed)

	// Duplicate ack does not change state again.
	changed, err = messages.MarkDelivered(ctx, "m1")
	require.NoError(t, err)
	require.False(t, changed)

	msg, err := messages.Get(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "delivered", msg.Status)
}

func TestMessagesMarkConversationDelivered(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedConversation(t, conversations, "c1", []string{"u1"})
	for i, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, messages.Create(ctx, Message{
			ID: id, ConversationID: "c1", SenderID: "u1", Body: "msg", CreatedAt: time.UnixMilli(int64(3000 + i)),
		}))
	}

	ids, err := messages.MarkConversationDelivered(ctx, "c1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"m1", "m2", "m3"}, ids)
}

func TestMessagesToggleReaction(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")
	seedConversation(t, conversations, "c1", []string{"u1"})
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "hi", CreatedAt: time.UnixMilli(3000),
	}))

	reactions, err := messages.ToggleReaction(ctx, "m1", "u1", "👍")
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	require.Equal(t, "👍", reactions[0].Emoji)

	// Same user, same emoji: removed.
	reactions, err = messages.ToggleReaction(ctx, "m1", "u1", "👍")
	require.NoError(t, err)
	require.Empty(t, reactions)

	// Different emoji coexists with another user's reaction.
	_, err = messages.ToggleReaction(ctx, "m1", "u1", "🎉")
	require.NoError(t, err)
	reactions, err = messages.ToggleReaction(ctx, "m1", "u2", "🎉")
	require.NoError(t, err)
	require.Len(t, reactions, 2)
}

func TestMessagesSearchEscapesWildcards(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedConversation(t, conversations, "c1", []string{"u1"})
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "progress: 100% done", CreatedAt: time.UnixMilli(3000),
	}))
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m2", ConversationID: "c1", SenderID: "u1", Body: "unrelated", CreatedAt: time.UnixMilli(3001),
	}))

	found, err := messages.SearchInConversation(ctx, "c1", "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "m1", found[0].ID)

	// Case-insensitive match.
	found, err = messages.SearchInConversation(ctx, "c1", "PROGRESS")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// A literal % must not act as a wildcard.
	found, err = messages.SearchInConversation(ctx, "c1", "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "m1", found[0].ID)
}

func TestMessagesSearchForUserScopedToMembership(t *testing.T) {
	db := newTestDB(t)
	users := NewUsers(db.DB)
	conversations := NewConversations(db.DB)
	messages := NewMessages(db.DB)
	ctx := context.Background()

	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")
	seedConversation(t, conversations, "c1", []string{"u1"})
	seedConversation(t, conversations, "c2", []string{"u2"})

	require.NoError(t, messages.Create(ctx, Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "findme here", CreatedAt: time.UnixMilli(3000),
	}))
	require.NoError(t, messages.Create(ctx, Message{
		ID: "m2", ConversationID: "c2", SenderID: "u2", Body: "findme there", CreatedAt: time.UnixMilli(3001),
	}))

	found, err := messages.SearchForUser(ctx, "u1", "findme")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "m1", found[0].ID)
}
