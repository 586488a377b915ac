package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"mechamind.backend/internal/domain/entities"
	"mechamind.backend/internal/infrastructure/models"
)

// StatsRepository runs the read-only aggregate queries of the admin dashboard
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Totals(ctx context.Context) (entities.StatsTotals, error) {
	var out entities.StatsTotals
	db := GetDB(ctx, r.db)

	counts := []struct {
		dst   *int64
		model interface{}
		where string
	}{
		{&out.Users, &models.User{}, ""},
		{&out.VerifiedUsers, &models.User{}, "verified = true"},
		{&out.Chats, &models.Chat{}, ""},
		{&out.Messages, &models.Message{}, ""},
		{&out.OilChanges, &models.OilChange{}, ""},
		{&out.CarParts, &models.CarPart{}, ""},
		{&out.InStockParts, &models.CarPart{}, "in_stock = true"},
	}
	for _, c := range counts {
		q := db.Session(&gorm.Session{NewDB: true}).Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return entities.StatsTotals{}, err
		}
	}
	return out, nil
}

func (r *StatsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.User{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *StatsRepository) CountChatsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Chat{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *StatsRepository) RecentUsers(ctx context.Context, limit int) ([]entities.RecentUser, error) {
	var ms []models.User
	if err := GetDB(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]entities.RecentUser, 0, len(ms))
	for _, m := range ms {
		out = append(out, entities.RecentUser{
			ID:        m.ID,
			Email:     m.Email,
			Name:      m.Name,
			Verified:  m.Verified,
			IsAdmin:   m.IsAdmin,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

func (r *StatsRepository) RecentChats(ctx context.Context, limit int) ([]entities.RecentChat, error) {
	out := make([]entities.RecentChat, 0, limit)
	err := GetDB(ctx, r.db).
		Table("chats").
		Select("chats.id, chats.title, chats.created_at, users.email AS user_email, " +
			"(SELECT COUNT(*) FROM messages WHERE messages.chat_id = chats.id) AS message_count").
		Joins("LEFT JOIN users ON users.id = chats.user_id").
		Order("chats.created_at DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *StatsRepository) PopularCarModels(ctx context.Context, limit int) ([]entities.CarModelCount, error) {
	out := make([]entities.CarModelCount, 0, limit)
	err := GetDB(ctx, r.db).
		Model(&models.OilChange{}).
		Select("car_model, COUNT(*) AS count").
		Where("car_model IS NOT NULL AND car_model <> ''").
		Group("car_model").
		Order("count DESC, car_model ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
