package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/carrier-im/carrier/internal/wire"
)

// Message is a stored message row.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	Status         string
	ParentID       string
	CreatedAt      time.Time
}

// Reaction is one stored reaction row.
type Reaction struct {
	MessageID string
	UserID    string
	Emoji     string
}

// Messages provides access to messages and their reactions.
type Messages struct {
	db *sql.DB
}

func NewMessages(db *sql.DB) *Messages {
	return &Messages{db: db}
}

// Create inserts a new message with status "sent".
func (s *Messages) Create(ctx context.Context, m Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body, status, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.Body, wire.MessageStatusSent, nullable(m.ParentID), m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// Get returns a single message by id.
func (s *Messages) Get(ctx context.Context, id string) (Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, conversation_id, sender_id, body, status, parent_id, created_at
		FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// ListForConversation returns all messages of a conversation in creation
// order.
func (s *Messages) ListForConversation(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, body, status, parent_id, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// MarkDelivered applies the sent->delivered transition for one message.
// It returns false when the message was already delivered (or unknown);
// delivered is terminal and never reverts.
func (s *Messages) MarkDelivered(ctx context.Context, messageID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET status = ?
		WHERE id = ? AND status = ?`,
		wire.MessageStatusDelivered, messageID, wire.MessageStatusSent,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark message delivered: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkConversationDelivered applies the bulk sent->delivered sweep for a
// conversation and returns the ids of every delivered message in it.
func (s *Messages) MarkConversationDelivered(ctx context.Context, conversationID string) ([]string, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET status = ?
		WHERE conversation_id = ? AND status = ?`,
		wire.MessageStatusDelivered, conversationID, wire.MessageStatusSent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark conversation delivered: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM messages
		WHERE conversation_id = ? AND status = ?`,
		conversationID, wire.MessageStatusDelivered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered messages: %w", err)
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

// ToggleReaction adds the (user, emoji) reaction to a message, or removes it
// when already present, and returns the resulting reaction set.
func (s *Messages) ToggleReaction(ctx context.Context, messageID, userID, emoji string) ([]Reaction, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM message_reactions
		WHERE message_id = ? AND user_id = ? AND emoji = ?`,
		messageID, userID, emoji,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle reaction: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if deleted == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO message_reactions (message_id, user_id, emoji)
			VALUES (?, ?, ?)`,
			messageID, userID, emoji,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add reaction: %w", err)
		}
	}
	return s.Reactions(ctx, messageID)
}

// Reactions returns all reactions on a message.
func (s *Messages) Reactions(ctx context.Context, messageID string) ([]Reaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, user_id, emoji FROM message_reactions
		WHERE message_id = ?`, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []Reaction
	for rows.Next() {
		var r Reaction
		if err := rows.Scan(&r.MessageID, &r.UserID, &r.Emoji); err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}
	return reactions, rows.Err()
}

// SearchInConversation returns messages of one conversation whose body
// contains the query, case-insensitively.
func (s *Messages) SearchInConversation(ctx context.Context, conversationID, query string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, body, status, parent_id, created_at
		FROM messages
		WHERE conversation_id = ? AND lower(body) LIKE ? ESCAPE '\'
		ORDER BY created_at LIMIT 500`,
		conversationID, likePattern(query),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// SearchForUser searches across every conversation the user participates in.
func (s *Messages) SearchForUser(ctx context.Context, userID, query string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.body, m.status, m.parent_id, m.created_at
		FROM messages m
		JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id
		WHERE cp.user_id = ? AND lower(m.body) LIKE ? ESCAPE '\'
		ORDER BY m.created_at LIMIT 500`,
		userID, likePattern(query),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func likePattern(query string) string {
	escaped := strings.NewReplacer("%", `\%`, "_", `\_`).Replace(strings.ToLower(query))
	return "%" + escaped + "%"
}

func collectMessages(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanMessage(row rowScanner) (Message, error) {
	var (
		m       Message
		parent  sql.NullString
		created int64
	)
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.Status, &parent, &created); err != nil {
		return Message{}, err
	}
	m.ParentID = parent.String
	m.CreatedAt = time.UnixMilli(created)
	return m, nil
}
