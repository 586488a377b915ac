package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/infrastructure/models"
	"mechamind.backend/pkg/utils"
)

type CarPartRepository struct {
	db *gorm.DB
}

func NewCarPartRepository(db *gorm.DB) *CarPartRepository {
	return &CarPartRepository{db: db}
}

func (r *CarPartRepository) Create(ctx context.Context, part *entities.CarPart) error {
	m := r.toModel(part)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	part.CreatedAt = m.CreatedAt
	part.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *CarPartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CarPart, error) {
	var m models.CarPart
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List filters by exact category and by a case-insensitive substring of any localized name.
func (r *CarPartRepository) List(ctx context.Context, filter entities.CarPartFilter) ([]*entities.CarPart, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.CarPart{})

	if c := strings.TrimSpace(filter.Category); c != "" {
		query = query.Where("category = ?", c)
	}
	if strings.TrimSpace(filter.Search) != "" {
		term := likeTerm(filter.Search)
		query = query.Where(`search_key LIKE ? ESCAPE '\'`, term)
	}
	if filter.InStockOnly {
		query = query.Where("in_stock = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := utils.GetPaginationParams(filter.Page, filter.Limit)
	if page.Paged() {
		query = query.Offset(page.CalculateOffset()).Limit(page.Limit)
	}

	var ms []models.CarPart
	if err := query.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.CarPart, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, total, nil
}

func (r *CarPartRepository) ListInStock(ctx context.Context) ([]*entities.CarPart, error) {
	var ms []models.CarPart
	if err := GetDB(ctx, r.db).Where("in_stock = ?", true).Order("category ASC, name_en ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.CarPart, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, nil
}

func (r *CarPartRepository) Update(ctx context.Context, part *entities.CarPart) error {
	updates := map[string]interface{}{
		"name_ar":     part.NameAr,
		"name_en":     part.NameEn,
		"name_fr":     part.NameFr,
		"category":    part.Category,
		"price_dzd":   part.PriceDZD,
		"brand":       part.Brand.Ptr(),
		"compatible":  part.Compatible.Ptr(),
		"in_stock":    part.InStock,
		"stock_count": part.StockCount,
		"description": part.Description.Ptr(),
		"image_url":   part.ImageURL.Ptr(),
		"search_key":  searchKey(part.NameAr, part.NameEn, part.NameFr),
		"updated_at":  time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.CarPart{}).Where("id = ?", part.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *CarPartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.CarPart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *CarPartRepository) toModel(p *entities.CarPart) *models.CarPart {
	return &models.CarPart{
		ID:          p.ID,
		NameAr:      p.NameAr,
		NameEn:      p.NameEn,
		NameFr:      p.NameFr,
		Category:    p.Category,
		PriceDZD:    p.PriceDZD,
		Brand:       p.Brand.Ptr(),
		Compatible:  p.Compatible.Ptr(),
		InStock:     p.InStock,
		StockCount:  p.StockCount,
		Description: p.Description.Ptr(),
		ImageURL:    p.ImageURL.Ptr(),
		SearchKey:   searchKey(p.NameAr, p.NameEn, p.NameFr),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r *CarPartRepository) toEntity(m *models.CarPart) *entities.CarPart {
	return &entities.CarPart{
		ID:          m.ID,
		NameAr:      m.NameAr,
		NameEn:      m.NameEn,
		NameFr:      m.NameFr,
		Category:    m.Category,
		PriceDZD:    m.PriceDZD,
		Brand:       null.StringFromPtr(m.Brand),
		Compatible:  null.StringFromPtr(m.Compatible),
		InStock:     m.InStock,
		StockCount:  m.StockCount,
		Description: null.StringFromPtr(m.Description),
		ImageURL:    null.StringFromPtr(m.ImageURL),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
