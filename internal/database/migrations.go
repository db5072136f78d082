package database

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order and tracked by version in
// schema_migrations. Timestamps are stored as unix milliseconds.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_initial",
		sql: `
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	avatar        TEXT,
	password_hash TEXT NOT NULL,
	last_seen_at  INTEGER,
	created_at    INTEGER NOT NULL
);

CREATE TABLE conversations (
	id         TEXT PRIMARY KEY,
	name       TEXT,
	is_group   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE conversation_participants (
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	user_id         TEXT NOT NULL REFERENCES users(id),
	PRIMARY KEY (conversation_id, user_id)
);

CREATE INDEX idx_participants_user ON conversation_participants(user_id);

CREATE TABLE messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	sender_id       TEXT NOT NULL REFERENCES users(id),
	body            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'sent',
	parent_id       TEXT REFERENCES messages(id),
	created_at      INTEGER NOT NULL
);

CREATE INDEX idx_messages_conversation_created ON messages(conversation_id, created_at);

CREATE TABLE message_reactions (
	message_id TEXT NOT NULL REFERENCES messages(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	emoji      TEXT NOT NULL,
	PRIMARY KEY (message_id, user_id, emoji)
);
`,
	},
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.version, err)
		}
	}

	return nil
}
