package usecases

import (
	"context"
	"errors"
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

// MaintenanceUsecase tracks a user's oil changes
type MaintenanceUsecase struct {
	oilRepo repositories.OilChangeRepository
	now     func() time.Time
}

func NewMaintenanceUsecase(oilRepo repositories.OilChangeRepository) *MaintenanceUsecase {
	return &MaintenanceUsecase{oilRepo: oilRepo, now: time.Now}
}

func (u *MaintenanceUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entities.OilChangeRecord, error) {
	return u.oilRepo.ListByUser(ctx, userID)
}

func (u *MaintenanceUsecase) Create(ctx context.Context, userID uuid.UUID, input *entities.CreateOilChangeInput) (*entities.OilChangeRecord, error) {
	if input.ChangeDate == nil || input.ChangeDate.IsZero() {
		return nil, fmt.Errorf("changeDate is required: %w", domainerrors.ErrInvalidInput)
	}
	if input.KilometersDone == nil {
		return nil, fmt.Errorf("kilometersDone is required: %w", domainerrors.ErrInvalidInput)
	}
	if *input.KilometersDone < 0 {
		return nil, fmt.Errorf("kilometersDone cannot be negative: %w", domainerrors.ErrInvalidInput)
	}

	now := u.now()
	record := &entities.OilChangeRecord{
		ID:             utils.GenerateUUIDv7(),
		UserID:         userID,
		CarModel:       trimmedString(input.CarModel),
		PurchaseDate:   null.TimeFromPtr(input.PurchaseDate),
		ChangeDate:     *input.ChangeDate,
		KilometersDone: *input.KilometersDone,
		Notes:          trimmedString(input.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.oilRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (u *MaintenanceUsecase) Update(ctx context.Context, userID, id uuid.UUID, input *entities.UpdateOilChangeInput) (*entities.OilChangeRecord, error) {
	record, err := u.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.CarModel != nil {
		record.CarModel = trimmedString(input.CarModel)
	}
	if input.PurchaseDate != nil {
		record.PurchaseDate = null.TimeFrom(*input.PurchaseDate)
	}
	if input.ChangeDate != nil {
		if input.ChangeDate.IsZero() {
			return nil, fmt.Errorf("changeDate cannot be empty: %w", domainerrors.ErrInvalidInput)
		}
		record.ChangeDate = *input.ChangeDate
	}
	if input.KilometersDone != nil {
		if *input.KilometersDone < 0 {
			return nil, fmt.Errorf("kilometersDone cannot be negative: %w", domainerrors.ErrInvalidInput)
		}
		record.KilometersDone = *input.KilometersDone
	}
	if input.Notes != nil {
		record.Notes = trimmedString(input.Notes)
	}
	record.UpdatedAt = u.now()

	if err := u.oilRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (u *MaintenanceUsecase) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	return u.oilRepo.Delete(ctx, id)
}

// Status derives the oil status from the latest record. currentKm is optional.
func (u *MaintenanceUsecase) Status(ctx context.Context, userID uuid.UUID, currentKm *int) (entities.OilChangeStatus, error) {
	latest, err := u.oilRepo.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.DeriveOilStatus(nil, u.now(), currentKm), nil
		}
		return entities.OilChangeStatus{}, err
	}
	return entities.DeriveOilStatus(latest, u.now(), currentKm), nil
}

// owned loads a record and hides records of other users as not found.
func (u *MaintenanceUsecase) owned(ctx context.Context, userID, id uuid.UUID) (*entities.OilChangeRecord, error) {
	record, err := u.oilRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	return record, nil
}

func trimmedString(s *string) null.String {
	if s == nil {
		return null.String{}
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}
