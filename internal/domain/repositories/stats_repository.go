package repositories

import (
	"context"
	"time"

	"mechamind.backend/internal/domain/entities"
)

// StatsRepository answers the admin dashboard queries. Each method is
// independent so callers can run them concurrently.
type StatsRepository interface {
	Totals(ctx context.Context) (entities.StatsTotals, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountChatsSince(ctx context.Context, since time.Time) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]entities.RecentUser, error)
	RecentChats(ctx context.Context, limit int) ([]entities.RecentChat, error)
	PopularCarModels(ctx context.Context, limit int) ([]entities.CarModelCount, error)
}
