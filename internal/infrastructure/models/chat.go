package models

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_chats_user_client_key,priority:1"`
	Title     string    `gorm:"type:varchar(255);not null"`
	ClientKey *string   `gorm:"type:varchar(128);uniqueIndex:idx_chats_user_client_key,priority:2"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Messages []Message `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string { return "chats" }

type Message struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (Message) TableName() string { return "messages" }
