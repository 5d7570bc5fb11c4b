// Package chat defines the conversation input domain for Counsel.
// A conversation is the ordered transcript of an employee's exchange with
// the intake surface (chat widget or email thread), oldest message first.
package chat

import "strings"

// Roles used in conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single utterance in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered transcript, oldest first.
type Conversation []Message

// LatestUserMessage returns the content of the most recent user message,
// or the empty string if the conversation has none.
func (c Conversation) LatestUserMessage() string {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == RoleUser {
			return c[i].Content
		}
	}
	return ""
}

// Transcript renders the conversation as plain text, one "role: content"
// line per message. Used when handing the conversation to the completion
// service for extraction or answer generation.
func (c Conversation) Transcript() string {
	var b strings.Builder
	for i, m := range c {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}
