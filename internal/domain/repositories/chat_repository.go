package repositories

import (
	"context"

	"github.com/google/uuid"
	"mechamind.backend/internal/domain/entities"
)

// ChatRepository persists chats and their messages
type ChatRepository interface {
	// CreateWithMessages inserts the chat and its messages atomically.
	// Returns ErrAlreadyExists when the (user, client key) pair is taken.
	CreateWithMessages(ctx context.Context, chat *entities.Chat, messages []*entities.Message) error
	AppendMessages(ctx context.Context, chatID uuid.UUID, messages []*entities.Message) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error)
	GetByClientKey(ctx context.Context, userID uuid.UUID, clientKey string) (*entities.Chat, error)
	GetWithMessages(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.ChatSummary, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}
