package repositories

import (
	"context"

	"github.com/google/uuid"
	"mechamind.backend/internal/domain/entities"
)

type OilChangeRepository interface {
	Create(ctx context.Context, record *entities.OilChangeRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.OilChangeRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.OilChangeRecord, error)
	Latest(ctx context.Context, userID uuid.UUID) (*entities.OilChangeRecord, error)
	Update(ctx context.Context, record *entities.OilChangeRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}
