package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/infrastructure/models"
)

type OilChangeRepository struct {
	db *gorm.DB
}

func NewOilChangeRepository(db *gorm.DB) *OilChangeRepository {
	return &OilChangeRepository{db: db}
}

func (r *OilChangeRepository) Create(ctx context.Context, record *entities.OilChangeRecord) error {
	m := r.toModel(record)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	record.CreatedAt = m.CreatedAt
	record.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *OilChangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.OilChangeRecord, error) {
	var m models.OilChange
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *OilChangeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.OilChangeRecord, error) {
	var ms []models.OilChange
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("change_date DESC, created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.OilChangeRecord, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, nil
}

func (r *OilChangeRepository) Latest(ctx context.Context, userID uuid.UUID) (*entities.OilChangeRecord, error) {
	var m models.OilChange
	err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("change_date DESC, created_at DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *OilChangeRepository) Update(ctx context.Context, record *entities.OilChangeRecord) error {
	updates := map[string]interface{}{
		"car_model":       record.CarModel.Ptr(),
		"purchase_date":   record.PurchaseDate.Ptr(),
		"change_date":     record.ChangeDate,
		"kilometers_done": record.KilometersDone,
		"notes":           record.Notes.Ptr(),
		"updated_at":      time.Now(),
	}

	result := GetDB(ctx, r.db).Model(&models.OilChange{}).Where("id = ?", record.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *OilChangeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.OilChange{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *OilChangeRepository) toModel(e *entities.OilChangeRecord) *models.OilChange {
	return &models.OilChange{
		ID:             e.ID,
		UserID:         e.UserID,
		CarModel:       e.CarModel.Ptr(),
		PurchaseDate:   e.PurchaseDate.Ptr(),
		ChangeDate:     e.ChangeDate,
		KilometersDone: e.KilometersDone,
		Notes:          e.Notes.Ptr(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (r *OilChangeRepository) toEntity(m *models.OilChange) *entities.OilChangeRecord {
	return &entities.OilChangeRecord{
		ID:             m.ID,
		UserID:         m.UserID,
		CarModel:       null.StringFromPtr(m.CarModel),
		PurchaseDate:   null.TimeFromPtr(m.PurchaseDate),
		ChangeDate:     m.ChangeDate,
		KilometersDone: m.KilometersDone,
		Notes:          null.StringFromPtr(m.Notes),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
