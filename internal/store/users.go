package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// User is a stored user row. LastSeen is unix milliseconds; zero means the
// user has never disconnected.
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	Avatar       string
	PasswordHash string
	LastSeen     int64
	CreatedAt    time.Time
}

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// Users provides access to the users table.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new user.
func (s *Users) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, name, avatar, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Name, nullable(u.Avatar), u.PasswordHash, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns a single user by id.
func (s *Users) GetByID(ctx context.Context, id string) (User, error) {
	return s.getOne(ctx, "id", id)
}

// GetByUsername returns a single user by username.
func (s *Users) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.getOne(ctx, "username", username)
}

func (s *Users) getOne(ctx context.Context, column, value string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, name, avatar, password_hash, last_seen_at, created_at
		FROM users WHERE `+column+` = ?`, value)
	return scanUser(row)
}

// Exists reports whether a user with the given username or email exists.
func (s *Users) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// List returns all users ordered by username.
func (s *Users) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, name, avatar, password_hash, last_seen_at, created_at
		FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByUsernames returns the users matching the given usernames. Unknown
// usernames are skipped.
func (s *Users) GetByUsernames(ctx context.Context, usernames []string) ([]User, error) {
	users := make([]User, 0, len(usernames))
	for _, username := range usernames {
		u, err := s.GetByUsername(ctx, username)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// RecordLastSeen stores the offline-transition timestamp for a user.
func (s *Users) RecordLastSeen(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_seen_at = ? WHERE id = ?", at.UnixMilli(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to record last seen: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		avatar   sql.NullString
		lastSeen sql.NullInt64
		created  int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &avatar, &u.PasswordHash, &lastSeen, &created); err != nil {
		return User{}, err
	}
	u.Avatar = avatar.String
	u.LastSeen = lastSeen.Int64
	u.CreatedAt = time.UnixMilli(created)
	return u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
