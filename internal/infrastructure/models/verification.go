package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	Code      string    `gorm:"type:varchar(6);not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (VerificationCode) TableName() string { return "verification_codes" }

// PendingSignup lives next to the code, one row per email.
type PendingSignup struct {
	Email        string    `gorm:"type:varchar(255);primaryKey"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Name         string    `gorm:"type:varchar(100);not null;default:''"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CreatedAt    time.Time
}

func (PendingSignup) TableName() string { return "pending_signups" }
