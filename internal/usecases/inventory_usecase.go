package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/domain/repositories"
	"mechamind.backend/pkg/utils"
)

// InventoryUsecase manages the spare-parts catalog
type InventoryUsecase struct {
	partRepo repositories.CarPartRepository
	now      func() time.Time
}

func NewInventoryUsecase(partRepo repositories.CarPartRepository) *InventoryUsecase {
	return &InventoryUsecase{partRepo: partRepo, now: time.Now}
}

// List returns a page of parts. An unpaged request returns everything.
func (u *InventoryUsecase) List(ctx context.Context, filter entities.CarPartFilter) ([]*entities.CarPart, utils.PaginationMeta, error) {
	p := utils.GetPaginationParams(filter.Page, filter.Limit)
	filter.Page, filter.Limit = p.Page, p.Limit
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)

	parts, total, err := u.partRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return parts, utils.CalculateMeta(total, p), nil
}

func (u *InventoryUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.CarPart, error) {
	return u.partRepo.GetByID(ctx, id)
}

// Create adds a part. nameFr falls back to nameEn and the part is in stock unless told otherwise.
func (u *InventoryUsecase) Create(ctx context.Context, input *entities.CreateCarPartInput) (*entities.CarPart, error) {
	nameAr := strings.TrimSpace(input.NameAr)
	nameEn := strings.TrimSpace(input.NameEn)
	category := strings.TrimSpace(input.Category)
	if nameAr == "" || nameEn == "" || category == "" || input.PriceDZD == nil {
		return nil, fmt.Errorf("nameAr, nameEn, category and priceDZD are required: %w", domainerrors.ErrInvalidInput)
	}
	if err := validatePartNumbers(input.PriceDZD, input.StockCount); err != nil {
		return nil, err
	}

	nameFr := strings.TrimSpace(input.NameFr)
	if nameFr == "" {
		nameFr = nameEn
	}

	now := u.now()
	part := &entities.CarPart{
		ID:          utils.GenerateUUIDv7(),
		NameAr:      nameAr,
		NameEn:      nameEn,
		NameFr:      nameFr,
		Category:    category,
		PriceDZD:    *input.PriceDZD,
		Brand:       null.StringFromPtr(input.Brand),
		Compatible:  null.StringFromPtr(input.Compatible),
		InStock:     true,
		Description: null.StringFromPtr(input.Description),
		ImageURL:    null.StringFromPtr(input.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.InStock != nil {
		part.InStock = *input.InStock
	}
	if input.StockCount != nil {
		part.StockCount = *input.StockCount
	}

	if err := u.partRepo.Create(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

// Update applies only the supplied fields.
func (u *InventoryUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdateCarPartInput) (*entities.CarPart, error) {
	if input.IsEmpty() {
		return nil, fmt.Errorf("no fields to update: %w", domainerrors.ErrInvalidInput)
	}
	if err := validatePartNumbers(input.PriceDZD, input.StockCount); err != nil {
		return nil, err
	}

	part, err := u.partRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		in  *string
		out *string
	}{
		{input.NameAr, &part.NameAr},
		{input.NameEn, &part.NameEn},
		{input.NameFr, &part.NameFr},
		{input.Category, &part.Category},
	} {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return nil, fmt.Errorf("names and category cannot be empty: %w", domainerrors.ErrInvalidInput)
		}
		*f.out = v
	}

	if input.PriceDZD != nil {
		part.PriceDZD = *input.PriceDZD
	}
	if input.Brand != nil {
		part.Brand = null.StringFrom(*input.Brand)
	}
	if input.Compatible != nil {
		part.Compatible = null.StringFrom(*input.Compatible)
	}
	if input.InStock != nil {
		part.InStock = *input.InStock
	}
	if input.StockCount != nil {
		part.StockCount = *input.StockCount
	}
	if input.Description != nil {
		part.Description = null.StringFrom(*input.Description)
	}
	if input.ImageURL != nil {
		part.ImageURL = null.StringFrom(*input.ImageURL)
	}
	part.UpdatedAt = u.now()

	if err := u.partRepo.Update(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

// Delete reports ErrNotFound for unknown ids before deleting.
func (u *InventoryUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := u.partRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return u.partRepo.Delete(ctx, id)
}

func validatePartNumbers(price *float64, stock *int) error {
	if price != nil && *price < 0 {
		return fmt.Errorf("priceDZD cannot be negative: %w", domainerrors.ErrInvalidInput)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("stockCount cannot be negative: %w", domainerrors.ErrInvalidInput)
	}
	return nil
}
