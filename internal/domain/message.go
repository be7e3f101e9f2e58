package domain

import "time"

// Role identifies the author of a message.
type Role string

// Role constants for message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageStatus tracks whether a message can still change.
type MessageStatus string

const (
	StatusComplete  MessageStatus = "complete"
	StatusStreaming MessageStatus = "streaming"
)

// Message represents a single entry in the conversation log. Content only
// changes while Status is StatusStreaming.
type Message struct {
	ID        string        `json:"id" yaml:"id"`
	Role      Role          `json:"role" yaml:"role"`
	Content   string        `json:"content" yaml:"content"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Status    MessageStatus `json:"status" yaml:"status"`
}

// IsStreaming reports whether the message is still being revealed.
func (m Message) IsStreaming() bool { return m.Status == StatusStreaming }
