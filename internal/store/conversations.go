package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Conversation is a stored DM or group conversation.
type Conversation struct {
	ID        string
	Name      string
	IsGroup   bool
	CreatedAt time.Time
}

// LastMessage is the most recent message preview for a conversation listing.
type LastMessage struct {
	Text      string
	SenderID  string
	Status    string
	CreatedAt time.Time
}

// ConversationSummary is a conversation joined with its participants and last
// message, as returned by ListForUser.
type ConversationSummary struct {
	Conversation
	ParticipantIDs []string
	LastMessage    *LastMessage
}

// Conversations provides access to conversations and their participant sets.
// The persisted participant set is the source of truth; the realtime room
// index only caches it.
type Conversations struct {
	db *sql.DB
}

func NewConversations(db *sql.DB) *Conversations {
	return &Conversations{db: db}
}

// Create inserts a conversation and its participant rows in one transaction.
func (s *Conversations) Create(ctx context.Context, conv Conversation, participantIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, name, is_group, created_at)
		VALUES (?, ?, ?, ?)`,
		conv.ID, nullable(conv.Name), boolToInt(conv.IsGroup), conv.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	for _, userID := range participantIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id)
			VALUES (?, ?)`,
			conv.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation: %w", err)
	}
	return nil
}

// Get returns a single conversation by id.
func (s *Conversations) Get(ctx context.Context, id string) (Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, is_group, created_at FROM conversations WHERE id = ?", id)
	return scanConversation(row)
}

// ListForUser returns the conversations the user participates in, each with
// its participant ids and last message preview, most recently active first.
func (s *Conversations) ListForUser(ctx context.Context, userID string) ([]ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.is_group, c.created_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = ?
		ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ConversationSummary{Conversation: conv})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range summaries {
		participants, err := s.ParticipantIDs(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].ParticipantIDs = participants

		last, err := s.lastMessage(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].LastMessage = last
	}

	return summaries, nil
}

func (s *Conversations) lastMessage(ctx context.Context, conversationID string) (*LastMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT body, sender_id, status, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at DESC LIMIT 1`, conversationID)

	var (
		m       LastMessage
		created int64
	)
	err := row.Scan(&m.Text, &m.SenderID, &m.Status, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last message: %w", err)
	}
	m.CreatedAt = time.UnixMilli(created)
	return &m, nil
}

// ParticipantIDs returns the persisted participant set of a conversation.
func (s *Conversations) ParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM conversation_participants WHERE conversation_id = ?", conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ParticipantConversations returns the ids of every conversation the user
// participates in. Used by the connection lifecycle to join rooms on connect.
func (s *Conversations) ParticipantConversations(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT conversation_id FROM conversation_participants WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsParticipant reports whether the user belongs to the conversation.
func (s *Conversations) IsParticipant(ctx context.Context, userID, conversationID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM conversation_participants
		WHERE conversation_id = ? AND user_id = ?`, conversationID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

func scanConversation(row rowScanner) (Conversation, error) {
	var (
		c       Conversation
		name    sql.NullString
		isGroup int
		created int64
	)
	if err := row.Scan(&c.ID, &name, &isGroup, &created); err != nil {
		return Conversation{}, err
	}
	c.Name = name.String
	c.IsGroup = isGroup != 0
	c.CreatedAt = time.UnixMilli(created)
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
