package usecases

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/domain/repositories"
	"mechamind.backend/pkg/crypto"
	"mechamind.backend/pkg/jwt"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/metrics"
	"mechamind.backend/pkg/redis"
	"mechamind.backend/pkg/utils"
)

// CodeSender delivers verification codes by email.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
}

// SessionStore keeps opaque sessions and the revoked token list.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
}

var (
	generateOTP   = crypto.GenerateOTP
	hashPassword  = crypto.HashPassword
	checkPassword = crypto.CheckPassword
	newSessionID  = func() (string, error) { return crypto.GenerateRandomToken(32) }
)

const minPasswordLength = 6

// AuthOptions tunes the OTP flow.
type AuthOptions struct {
	CodeTTL time.Duration
	// ExposeCode echoes the code in the signup response (development only).
	ExposeCode bool
}

// AuthUsecase handles OTP signup, sign-in and profile changes
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	codeRepo   repositories.VerificationRepository
	uow        repositories.UnitOfWork
	jwtService *jwt.JWTService
	mailer     CodeSender
	sessions   SessionStore
	codeTTL    time.Duration
	exposeCode bool
	now        func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	codeRepo repositories.VerificationRepository,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
	mailer CodeSender,
	sessions SessionStore,
	opts AuthOptions,
) *AuthUsecase {
	ttl := opts.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AuthUsecase{
		userRepo:   userRepo,
		codeRepo:   codeRepo,
		uow:        uow,
		jwtService: jwtService,
		mailer:     mailer,
		sessions:   sessions,
		codeTTL:    ttl,
		exposeCode: opts.ExposeCode,
		now:        time.Now,
	}
}

// RequestSignup stores a pending signup and emails a fresh code. No user row
// is created until the code is verified.
func (u *AuthUsecase) RequestSignup(ctx context.Context, input *entities.SignupInput) (*entities.SignupResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domainerrors.ErrInvalidInput)
	}

	exists, err := u.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerrors.ErrAlreadyExists
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := u.newCode(email)
	if err != nil {
		return nil, err
	}
	pending := &entities.PendingSignup{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(input.Name),
		CreatedAt:    code.CreatedAt,
	}
	if err := u.codeRepo.Replace(ctx, code, pending); err != nil {
		return nil, err
	}
	metrics.OTPEvents.WithLabelValues("issued").Inc()

	return u.deliver(ctx, code)
}

// Resend issues a new code for an existing pending signup.
func (u *AuthUsecase) Resend(ctx context.Context, email string) (*entities.SignupResult, error) {
	email = utils.NormalizeEmail(email)

	if _, err := u.codeRepo.GetPending(ctx, email); err != nil {
		return nil, err
	}

	code, err := u.newCode(email)
	if err != nil {
		return nil, err
	}
	if err := u.codeRepo.ReplaceCode(ctx, code); err != nil {
		return nil, err
	}
	metrics.OTPEvents.WithLabelValues("resent").Inc()

	return u.deliver(ctx, code)
}

func (u *AuthUsecase) newCode(email string) (*entities.VerificationCode, error) {
	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	now := u.now()
	return &entities.VerificationCode{
		ID:        utils.GenerateUUIDv7(),
		Email:     email,
		Code:      otp,
		ExpiresAt: now.Add(u.codeTTL),
		CreatedAt: now,
	}, nil
}

// deliver sends the code. On failure the pending signup is kept so a resend can reuse it.
func (u *AuthUsecase) deliver(ctx context.Context, code *entities.VerificationCode) (*entities.SignupResult, error) {
	if err := u.mailer.SendVerificationCode(ctx, code.Email, code.Code, u.codeTTL); err != nil {
		logger.Error(ctx, "Failed to send verification email", zap.String("email", code.Email), zap.Error(err))
		metrics.OTPEvents.WithLabelValues("delivery_failed").Inc()
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrEmailDelivery, err)
	}

	result := &entities.SignupResult{Email: code.Email, ExpiresAt: code.ExpiresAt}
	if u.exposeCode {
		result.DevCode = code.Code
	}
	return result, nil
}

// Verify consumes a code and creates the verified user in one transaction.
func (u *AuthUsecase) Verify(ctx context.Context, input *entities.VerifyInput) (*entities.AuthResponse, error) {
	email := utils.NormalizeEmail(input.Email)
	var user *entities.User

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		code, err := u.codeRepo.GetCode(txCtx, email)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.ErrInvalidCode
			}
			return err
		}

		now := u.now()
		if subtle.ConstantTimeCompare([]byte(code.Code), []byte(input.Code)) != 1 || !code.ValidAt(now) {
			return domainerrors.ErrInvalidCode
		}

		pending, err := u.codeRepo.GetPending(txCtx, email)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.ErrInvalidCode
			}
			return err
		}

		user = &entities.User{
			ID:           utils.GenerateUUIDv7(),
			Email:        email,
			Name:         pending.Name,
			PasswordHash: pending.PasswordHash,
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}

		_, err = u.codeRepo.DeleteByEmail(txCtx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCode) {
			metrics.OTPEvents.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}
	metrics.OTPEvents.WithLabelValues("verified").Inc()

	return u.issue(ctx, user, false)
}

// Cancel drops any pending signup for the email. It always succeeds for unknown emails.
func (u *AuthUsecase) Cancel(ctx context.Context, email string) error {
	n, err := u.codeRepo.DeleteByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.OTPEvents.WithLabelValues("cancelled").Inc()
	}
	return nil
}

// Signin checks the password and issues a session token.
func (u *AuthUsecase) Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, utils.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return u.issue(ctx, user, input.UseSession)
}

func (u *AuthUsecase) issue(ctx context.Context, user *entities.User, withSession bool) (*entities.AuthResponse, error) {
	issued, err := u.jwtService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	resp := &entities.AuthResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      user,
	}

	if withSession && u.sessions != nil {
		sessionID, err := newSessionID()
		if err != nil {
			return nil, err
		}
		data := &redis.SessionData{Token: issued.Token, UserID: user.ID.String()}
		if err := u.sessions.CreateSession(ctx, sessionID, data, u.jwtService.Expiry()); err != nil {
			return nil, err
		}
		resp.SessionID = sessionID
	}
	return resp, nil
}

// Signout revokes the presented token for the rest of its lifetime and drops
// the opaque session, if any. Invalid tokens are ignored.
func (u *AuthUsecase) Signout(ctx context.Context, token, sessionID string) error {
	if u.sessions == nil {
		return nil
	}

	if token != "" {
		if claims, err := u.jwtService.ValidateToken(token); err == nil && claims.ExpiresAt != nil {
			ttl := claims.ExpiresAt.Sub(u.now())
			if err := u.sessions.RevokeToken(ctx, claims.ID, ttl); err != nil {
				return err
			}
		}
	}
	if sessionID != "" {
		if err := u.sessions.DeleteSession(ctx, sessionID); err != nil {
			logger.Warn(ctx, "Failed to delete session", zap.Error(err))
		}
	}
	return nil
}

// Me returns the caller's account.
func (u *AuthUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

// UpdateProfile renames the user and optionally rotates the password.
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domainerrors.ErrInvalidInput)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name

	if input.NewPassword != "" {
		if input.CurrentPassword == "" || !checkPassword(input.CurrentPassword, user.PasswordHash) {
			return nil, domainerrors.ErrPasswordMismatch
		}
		if len(input.NewPassword) < minPasswordLength {
			return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domainerrors.ErrInvalidInput)
		}
		hash, err := hashPassword(input.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = u.now()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
