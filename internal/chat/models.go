package chat

import "time"

// Domain models for the chat dashboard (conversation list, message
// transcript).

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Conversation is one thread in the user's history, ordered by the backend
// most-recently-updated first.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one entry in a conversation. Display order is the order of
// local append, not a server sequence number.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
