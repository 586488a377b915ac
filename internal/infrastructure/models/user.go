package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100);not null;default:''"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Verified     bool      `gorm:"not null;default:false"`
	IsAdmin      bool      `gorm:"not null;default:false;index"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }
