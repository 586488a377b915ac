package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/usecases"
)

func ptr[T any](v T) *T { return &v }

func TestInventoryUsecase_List(t *testing.T) {
	repo := new(MockCarPartRepository)
	uc := usecases.NewInventoryUsecase(repo)

	repo.On("List", mock.Anything, entities.CarPartFilter{Search: "filter", Category: "filters", Page: 2, Limit: 10}).
		Return([]*entities.CarPart{{NameEn: "Oil Filter"}}, int64(11), nil).Once()

	parts, meta, err := uc.List(context.Background(), entities.CarPartFilter{Search: " filter ", Category: "filters", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, parts, 1)
	assert.Equal(t, int64(11), meta.TotalCount)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestInventoryUsecase_CreateDefaults(t *testing.T) {
	repo := new(MockCarPartRepository)
	uc := usecases.NewInventoryUsecase(repo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	part, err := uc.Create(context.Background(), &entities.CreateCarPartInput{
		NameAr: "فلتر", NameEn: "Filter", Category: "filters", PriceDZD: ptr(1200.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Filter", part.NameFr)
	assert.True(t, part.InStock)
	assert.Equal(t, 0, part.StockCount)
	assert.False(t, part.Brand.Valid)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	part, err = uc.Create(context.Background(), &entities.CreateCarPartInput{
		NameAr: "فلتر", NameEn: "Filter", NameFr: "Filtre", Category: "filters", PriceDZD: ptr(0.0),
		InStock: ptr(false), StockCount: ptr(3), Brand: ptr("Bosch"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Filtre", part.NameFr)
	assert.False(t, part.InStock)
	assert.Equal(t, 3, part.StockCount)
	assert.Equal(t, null.StringFrom("Bosch"), part.Brand)
}

func TestInventoryUsecase_CreateValidation(t *testing.T) {
	uc := usecases.NewInventoryUsecase(new(MockCarPartRepository))
	cases := []*entities.CreateCarPartInput{
		{NameEn: "Filter", Category: "filters", PriceDZD: ptr(1.0)},
		{NameAr: "فلتر", Category: "filters", PriceDZD: ptr(1.0)},
		{NameAr: "فلتر", NameEn: "Filter", PriceDZD: ptr(1.0)},
		{NameAr: "فلتر", NameEn: "Filter", Category: "filters"},
		{NameAr: "فلتر", NameEn: "Filter", Category: "filters", PriceDZD: ptr(-1.0)},
		{NameAr: "فلتر", NameEn: "Filter", Category: "filters", PriceDZD: ptr(1.0), StockCount: ptr(-2)},
	}
	for _, in := range cases {
		_, err := uc.Create(context.Background(), in)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	}
}

func TestInventoryUsecase_UpdatePartial(t *testing.T) {
	repo := new(MockCarPartRepository)
	uc := usecases.NewInventoryUsecase(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&entities.CarPart{
		ID: id, NameAr: "a", NameEn: "b", NameFr: "c", Category: "d", PriceDZD: 10, InStock: true, StockCount: 4,
	}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *entities.CarPart) bool {
		return p.PriceDZD == 20 && p.NameEn == "b" && !p.InStock && p.StockCount == 4
	})).Return(nil).Once()

	part, err := uc.Update(context.Background(), id, &entities.UpdateCarPartInput{PriceDZD: ptr(20.0), InStock: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, part.PriceDZD)
	repo.AssertExpectations(t)

	_, err = uc.Update(context.Background(), id, &entities.UpdateCarPartInput{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = uc.Update(context.Background(), id, &entities.UpdateCarPartInput{NameEn: ptr(" ")})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestInventoryUsecase_DeleteChecksExistence(t *testing.T) {
	repo := new(MockCarPartRepository)
	uc := usecases.NewInventoryUsecase(repo)
	missing, present := uuid.New(), uuid.New()

	repo.On("GetByID", mock.Anything, missing).Return(nil, domainerrors.ErrNotFound)
	repo.On("GetByID", mock.Anything, present).Return(&entities.CarPart{ID: present}, nil)
	repo.On("Delete", mock.Anything, present).Return(nil).Once()

	assert.ErrorIs(t, uc.Delete(context.Background(), missing), domainerrors.ErrNotFound)
	assert.NoError(t, uc.Delete(context.Background(), present))
	repo.AssertNotCalled(t, "Delete", mock.Anything, missing)
}
