package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"mechamind.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *entities.User) error
	SetAdmin(ctx context.Context, email string, isAdmin bool) (*entities.User, error)
	AnyAdmin(ctx context.Context) (bool, error)
}

// VerificationRepository stores verification codes and their pending signups.
type VerificationRepository interface {
	// Replace deletes any code and pending signup for the email and stores the new pair.
	Replace(ctx context.Context, code *entities.VerificationCode, pending *entities.PendingSignup) error
	// ReplaceCode swaps only the code, keeping the pending signup.
	ReplaceCode(ctx context.Context, code *entities.VerificationCode) error
	GetCode(ctx context.Context, email string) (*entities.VerificationCode, error)
	GetPending(ctx context.Context, email string) (*entities.PendingSignup, error)
	// DeleteByEmail removes code and pending signup; returns the number of codes removed.
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
