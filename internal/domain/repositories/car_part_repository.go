package repositories

import (
	"context"

	"github.com/google/uuid"
	"mechamind.backend/internal/domain/entities"
)

type CarPartRepository interface {
	Create(ctx context.Context, part *entities.CarPart) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CarPart, error)
	List(ctx context.Context, filter entities.CarPartFilter) ([]*entities.CarPart, int64, error)
	ListInStock(ctx context.Context) ([]*entities.CarPart, error)
	Update(ctx context.Context, part *entities.CarPart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
