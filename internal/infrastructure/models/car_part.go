package models

import (
	"time"

	"github.com/google/uuid"
)

type CarPart struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	NameAr      string    `gorm:"type:varchar(255);not null"`
	NameEn      string    `gorm:"type:varchar(255);not null"`
	NameFr      string    `gorm:"type:varchar(255);not null"`
	Category    string    `gorm:"type:varchar(100);not null;index"`
	PriceDZD    float64   `gorm:"column:price_dzd;type:decimal(12,2);not null"`
	Brand       *string   `gorm:"type:varchar(100)"`
	Compatible  *string   `gorm:"type:text"`
	InStock     bool      `gorm:"not null;index"`
	StockCount  int       `gorm:"not null;default:0"`
	Description *string   `gorm:"type:text"`
	ImageURL    *string   `gorm:"column:image_url;type:text"`
	// SearchKey holds the lowercased localized names, folded in Go so
	// matching does not depend on the database's LOWER.
	SearchKey   string    `gorm:"column:search_key;type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (CarPart) TableName() string { return "car_parts" }
