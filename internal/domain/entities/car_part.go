package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

const (
	DefaultPartBrand      = "Generic/Universal"
	DefaultPartCompatible = "Multiple car models"
)

// CarPart is an inventory item priced in Algerian dinars.
type CarPart struct {
	ID          uuid.UUID   `json:"id"`
	NameAr      string      `json:"nameAr"`
	NameEn      string      `json:"nameEn"`
	NameFr      string      `json:"nameFr"`
	Category    string      `json:"category"`
	PriceDZD    float64     `json:"priceDZD"`
	Brand       null.String `json:"brand"`
	Compatible  null.String `json:"compatible"`
	InStock     bool        `json:"inStock"`
	StockCount  int         `json:"stockCount"`
	Description null.String `json:"description"`
	ImageURL    null.String `json:"imageUrl"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CarPartFilter narrows a parts listing
type CarPartFilter struct {
	Category    string
	Search      string
	InStockOnly bool
	Page        int
	Limit       int
}

// CreateCarPartInput is the admin create payload. Pointers mark optional fields.
type CreateCarPartInput struct {
	NameAr      string   `json:"nameAr"`
	NameEn      string   `json:"nameEn"`
	NameFr      string   `json:"nameFr"`
	Category    string   `json:"category"`
	PriceDZD    *float64 `json:"priceDZD"`
	Brand       *string  `json:"brand"`
	Compatible  *string  `json:"compatible"`
	InStock     *bool    `json:"inStock"`
	StockCount  *int     `json:"stockCount"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
}

// UpdateCarPartInput applies only the fields that are present.
type UpdateCarPartInput struct {
	NameAr      *string  `json:"nameAr"`
	NameEn      *string  `json:"nameEn"`
	NameFr      *string  `json:"nameFr"`
	Category    *string  `json:"category"`
	PriceDZD    *float64 `json:"priceDZD"`
	Brand       *string  `json:"brand"`
	Compatible  *string  `json:"compatible"`
	InStock     *bool    `json:"inStock"`
	StockCount  *int     `json:"stockCount"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
}

// IsEmpty reports whether no field was supplied.
func (in UpdateCarPartInput) IsEmpty() bool {
	return in.NameAr == nil && in.NameEn == nil && in.NameFr == nil && in.Category == nil &&
		in.PriceDZD == nil && in.Brand == nil && in.Compatible == nil && in.InStock == nil &&
		in.StockCount == nil && in.Description == nil && in.ImageURL == nil
}
