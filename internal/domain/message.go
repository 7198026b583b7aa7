// Package domain holds the core data types shared across the TodoFlow CLI.
package domain

import "time"

// Role constants for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single committed turn in the conversation history.
// Content is immutable once the message has been appended to history;
// in-progress assistant text lives in chat.Turn until it is finalized.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
