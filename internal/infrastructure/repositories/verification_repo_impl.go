package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/infrastructure/models"
)

// VerificationRepository stores verification codes and pending signups
type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Replace(ctx context.Context, code *entities.VerificationCode, pending *entities.PendingSignup) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", code.Email).Delete(&models.VerificationCode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("email = ?", code.Email).Delete(&models.PendingSignup{}).Error; err != nil {
			return err
		}
		if err := tx.Create(codeToModel(code)).Error; err != nil {
			return err
		}
		return tx.Create(&models.PendingSignup{
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			Name:         pending.Name,
			ExpiresAt:    code.ExpiresAt,
			CreatedAt:    pending.CreatedAt,
		}).Error
	})
}

func (r *VerificationRepository) ReplaceCode(ctx context.Context, code *entities.VerificationCode) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", code.Email).Delete(&models.VerificationCode{}).Error; err != nil {
			return err
		}
		if err := tx.Create(codeToModel(code)).Error; err != nil {
			return err
		}
		// keep the pending signup alive as long as its code
		return tx.Model(&models.PendingSignup{}).
			Where("email = ?", code.Email).
			Update("expires_at", code.ExpiresAt).Error
	})
}

func (r *VerificationRepository) GetCode(ctx context.Context, email string) (*entities.VerificationCode, error) {
	var m models.VerificationCode
	if err := GetDB(ctx, r.db).Where("email = ?", email).Order("created_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.VerificationCode{
		ID:        m.ID,
		Email:     m.Email,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *VerificationRepository) GetPending(ctx context.Context, email string) (*entities.PendingSignup, error) {
	var m models.PendingSignup
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.PendingSignup{
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
	}, nil
}

func (r *VerificationRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	var removed int64
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("email = ?", email).Delete(&models.VerificationCode{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Where("email = ?", email).Delete(&models.PendingSignup{}).Error
	})
	return removed, err
}

// DeleteExpired purges codes and pending signups that expired before the cutoff.
func (r *VerificationRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at <= ?", before).Delete(&models.VerificationCode{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Where("expires_at <= ?", before).Delete(&models.PendingSignup{}).Error
	})
	return removed, err
}

func codeToModel(c *entities.VerificationCode) *models.VerificationCode {
	return &models.VerificationCode{
		ID:        c.ID,
		Email:     c.Email,
		Code:      c.Code,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}
}
