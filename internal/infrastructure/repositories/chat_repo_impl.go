package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/infrastructure/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateWithMessages(ctx context.Context, chat *entities.Chat, messages []*entities.Message) error {
	m := &models.Chat{
		ID:        chat.ID,
		UserID:    chat.UserID,
		Title:     chat.Title,
		ClientKey: chat.ClientKey,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}

	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}
		return tx.Create(messagesToModels(chat.ID, messages)).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chat for client key: %w", domainerrors.ErrAlreadyExists)
		}
		return err
	}

	chat.CreatedAt = m.CreatedAt
	chat.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ChatRepository) AppendMessages(ctx context.Context, chatID uuid.UUID, messages []*entities.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(messagesToModels(chatID, messages)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", chatID).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
}

// GetOwned loads a chat without messages. Chats of other users are reported as not found.
func (r *ChatRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error) {
	var m models.Chat
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return chatToEntity(&m), nil
}

func (r *ChatRepository) GetByClientKey(ctx context.Context, userID uuid.UUID, clientKey string) (*entities.Chat, error) {
	var m models.Chat
	if err := GetDB(ctx, r.db).Where("user_id = ? AND client_key = ?", userID, clientKey).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return chatToEntity(&m), nil
}

func (r *ChatRepository) GetWithMessages(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error) {
	var m models.Chat
	err := GetDB(ctx, r.db).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	chat := chatToEntity(&m)
	chat.Messages = make([]*entities.Message, 0, len(m.Messages))
	for i := range m.Messages {
		msg := m.Messages[i]
		chat.Messages = append(chat.Messages, &entities.Message{
			ID:        msg.ID,
			ChatID:    msg.ChatID,
			Role:      entities.MessageRole(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return chat, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.ChatSummary, error) {
	var ms []models.Chat
	if err := GetDB(ctx, r.db).
		Select("id", "title", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.ChatSummary, 0, len(ms))
	for i := range ms {
		items = append(items, &entities.ChatSummary{ID: ms[i].ID, Title: ms[i].Title, CreatedAt: ms[i].CreatedAt})
	}
	return items, nil
}

func (r *ChatRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Chat{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainerrors.ErrNotFound
		}
		// explicit so it does not depend on FK cascade support
		return tx.Where("chat_id = ?", id).Delete(&models.Message{}).Error
	})
}

func chatToEntity(m *models.Chat) *entities.Chat {
	return &entities.Chat{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		ClientKey: m.ClientKey,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messagesToModels(chatID uuid.UUID, messages []*entities.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, models.Message{
			ID:        msg.ID,
			ChatID:    chatID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return out
}
