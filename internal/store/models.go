package store

import "time"

// DefaultTitle is the placeholder used until the first user message names a session.
const DefaultTitle = "New Chat"

// Message roles. RoleSystem is synthesized at request time and never persisted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ChatSession struct {
	ID        string    `json:"id"` // UUID
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID        int64     `json:"id"` // store-wide autoincrement sequence
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
