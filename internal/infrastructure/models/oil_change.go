package models

import (
	"time"

	"github.com/google/uuid"
)

type OilChange struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_oil_changes_user_date,priority:1"`
	CarModel       *string    `gorm:"type:varchar(255);index"`
	PurchaseDate   *time.Time `gorm:"type:timestamp"`
	ChangeDate     time.Time  `gorm:"not null;index:idx_oil_changes_user_date,priority:2"`
	KilometersDone int        `gorm:"not null"`
	Notes          *string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OilChange) TableName() string { return "oil_changes" }
