package store

import (
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const titleMaxLen = 30

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        title TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        FOREIGN KEY (session_id) REFERENCES sessions (id)
    );

    CREATE INDEX IF NOT EXISTS idx_messages_session_timestamp
        ON messages (session_id, timestamp);
    `
	_, err := s.db.Exec(schema)
	return err
}

// CreateSession inserts a new session with the placeholder title and returns it.
func (s *SQLiteStore) CreateSession() (*ChatSession, error) {
	sessionID := uuid.NewString()
	now := time.Now()

	_, err := s.db.Exec(
		"INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		sessionID, DefaultTitle, now, now,
	)
	if err != nil {
		return nil, storageErr("createSession", err)
	}
	return &ChatSession{ID: sessionID, Title: DefaultTitle, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) GetSession(sessionID string) (*ChatSession, error) {
	var session ChatSession
	err := s.db.QueryRow(
		"SELECT id, title, created_at, updated_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, storageErr("getSession", err)
	}
	return &session, nil
}

// ListSessions returns all sessions, most recently active first.
func (s *SQLiteStore) ListSessions() ([]ChatSession, error) {
	rows, err := s.db.Query(
		"SELECT id, title, created_at, updated_at FROM sessions ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, storageErr("listSessions", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var session ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, storageErr("listSessions", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("listSessions", err)
	}
	return sessions, nil
}

// GetHistory returns a session's messages in conversation order. An unknown
// session yields an empty slice, indistinguishable from an empty one.
func (s *SQLiteStore) GetHistory(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT id, session_id, role, content, timestamp FROM messages WHERE session_id = ? ORDER BY timestamp ASC, id ASC",
		sessionID,
	)
	if err != nil {
		return nil, storageErr("getHistory", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, storageErr("getHistory", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("getHistory", err)
	}
	return messages, nil
}

// AppendMessage inserts a message and stamps the session's updated_at in a
// single transaction. When isFirstMessage is set, the session row is upserted
// with a title derived from the message content.
func (s *SQLiteStore) AppendMessage(sessionID, role, content string, isFirstMessage bool) (*Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, storageErr("appendMessage", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if isFirstMessage {
		_, err = tx.Exec(
			`INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
             ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
			sessionID, deriveTitle(content), now, now,
		)
	} else {
		_, err = tx.Exec("UPDATE sessions SET updated_at = ? WHERE id = ?", now, sessionID)
	}
	if err != nil {
		return nil, storageErr("appendMessage", err)
	}

	res, err := tx.Exec(
		"INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)",
		sessionID, role, content, now,
	)
	if err != nil {
		return nil, storageErr("appendMessage", err)
	}
	msgID, err := res.LastInsertId()
	if err != nil {
		return nil, storageErr("appendMessage", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("appendMessage", err)
	}

	return &Message{ID: msgID, SessionID: sessionID, Role: role, Content: content, Timestamp: now}, nil
}

// DeleteSession removes a session and all its messages atomically. Deleting
// an unknown session is a no-op.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageErr("deleteSession", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return storageErr("deleteSession", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return storageErr("deleteSession", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("deleteSession", err)
	}
	return nil
}

// deriveTitle truncates the first user message to a short session label.
func deriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= titleMaxLen {
		return content
	}
	return string([]rune(content)[:titleMaxLen]) + "..."
}
