package usecases

import (
	"context"
	"crypto/subtle"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/domain/repositories"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/utils"
)

const (
	statsRecentLimit = 10
	statsWindow      = 7 * 24 * time.Hour
)

// AdminUsecase covers the admin bootstrap, role changes and the dashboard.
type AdminUsecase struct {
	userRepo  repositories.UserRepository
	statsRepo repositories.StatsRepository
	secretKey string
	now       func() time.Time
}

func NewAdminUsecase(userRepo repositories.UserRepository, statsRepo repositories.StatsRepository, secretKey string) *AdminUsecase {
	return &AdminUsecase{userRepo: userRepo, statsRepo: statsRepo, secretKey: secretKey, now: time.Now}
}

// IsAdmin reports whether userID holds the admin flag.
func (u *AdminUsecase) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

func (u *AdminUsecase) Check(ctx context.Context, userID uuid.UUID) (*entities.AdminCheck, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.AdminCheck{IsAdmin: user.IsAdmin, Email: user.Email, Name: user.Name}, nil
}

// Setup creates or upgrades the first admin. It only works while no admin exists.
func (u *AdminUsecase) Setup(ctx context.Context, input *entities.AdminSetupInput) (*entities.User, error) {
	if u.secretKey == "" || subtle.ConstantTimeCompare([]byte(u.secretKey), []byte(input.SecretKey)) != 1 {
		return nil, domainerrors.ErrInvalidSecret
	}
	if len(input.Password) < minPasswordLength {
		return nil, domainerrors.ErrInvalidInput
	}

	exists, err := u.userRepo.AnyAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerrors.ErrAdminExists
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(input.Email)
	now := u.now()

	user, err := u.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.IsAdmin = true
		user.Verified = true
		user.PasswordHash = hash
		user.Name = entities.AdminSetupName
		user.UpdatedAt = now
		if err := u.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	case errors.Is(err, domainerrors.ErrNotFound):
		user = &entities.User{
			ID:           utils.GenerateUUIDv7(),
			Email:        email,
			Name:         entities.AdminSetupName,
			PasswordHash: hash,
			Verified:     true,
			IsAdmin:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	logger.Info(ctx, "Admin account set up", zap.String("email", email))
	return user, nil
}

// SetRole promotes or demotes a user by email.
func (u *AdminUsecase) SetRole(ctx context.Context, input *entities.SetAdminInput) (*entities.User, error) {
	if input.IsAdmin == nil {
		return nil, domainerrors.ErrInvalidInput
	}
	user, err := u.userRepo.SetAdmin(ctx, utils.NormalizeEmail(input.Email), *input.IsAdmin)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Admin role changed", zap.String("email", user.Email), zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// Stats runs the dashboard queries concurrently.
func (u *AdminUsecase) Stats(ctx context.Context) (*entities.AdminStats, error) {
	since := u.now().Add(-statsWindow)
	stats := &entities.AdminStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := u.statsRepo.Totals(gctx)
		stats.Totals = totals
		return err
	})
	g.Go(func() error {
		n, err := u.statsRepo.CountUsersSince(gctx, since)
		stats.Recent.NewUsersThisWeek = n
		return err
	})
	g.Go(func() error {
		n, err := u.statsRepo.CountChatsSince(gctx, since)
		stats.Recent.NewChatsThisWeek = n
		return err
	})
	g.Go(func() error {
		users, err := u.statsRepo.RecentUsers(gctx, statsRecentLimit)
		stats.RecentUsers = users
		return err
	})
	g.Go(func() error {
		chats, err := u.statsRepo.RecentChats(gctx, statsRecentLimit)
		stats.RecentChats = chats
		return err
	})
	g.Go(func() error {
		models, err := u.statsRepo.PopularCarModels(gctx, statsRecentLimit)
		stats.PopularCarModels = models
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats.Totals.Chats > 0 {
		avg := float64(stats.Totals.Messages) / float64(stats.Totals.Chats)
		stats.Averages.MessagesPerChat = math.Round(avg*100) / 100
	}
	if stats.RecentUsers == nil {
		stats.RecentUsers = []entities.RecentUser{}
	}
	if stats.RecentChats == nil {
		stats.RecentChats = []entities.RecentChat{}
	}
	if stats.PopularCarModels == nil {
		stats.PopularCarModels = []entities.CarModelCount{}
	}
	return stats, nil
}
