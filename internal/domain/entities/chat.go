package entities

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole is the author of a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatTitleMaxRunes bounds the title derived from the first question.
const ChatTitleMaxRunes = 100

// DefaultChatTitle is used when the question text is empty.
const DefaultChatTitle = "محادثة جديدة"

type Chat struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Title     string     `json:"title"`
	ClientKey *string    `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Messages  []*Message `json:"messages,omitempty"`
}

type Message struct {
	ID        uuid.UUID   `json:"id"`
	ChatID    uuid.UUID   `json:"chatId"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ChatSummary is a chat list row
type ChatSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationTurn is one message of the history sent by the client.
type ConversationTurn struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is a validated chat call
type ChatRequest struct {
	UserID         uuid.UUID
	ChatID         *uuid.UUID
	IdempotencyKey string
	Messages       []ConversationTurn
}

// Exchange is the question and answer recorded after a completed stream.
type Exchange struct {
	Question string
	Answer   string
}
