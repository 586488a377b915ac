package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mechamind.backend/internal/domain/entities"
	"mechamind.backend/pkg/redis"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) (*entities.User, error) {
	args := m.Called(ctx, email, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) AnyAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Mock VerificationRepository
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) Replace(ctx context.Context, code *entities.VerificationCode, pending *entities.PendingSignup) error {
	args := m.Called(ctx, code, pending)
	return args.Error(0)
}

func (m *MockVerificationRepository) ReplaceCode(ctx context.Context, code *entities.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationRepository) GetCode(ctx context.Context, email string) (*entities.VerificationCode, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationCode), args.Error(1)
}

func (m *MockVerificationRepository) GetPending(ctx context.Context, email string) (*entities.PendingSignup, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingSignup), args.Error(1)
}

func (m *MockVerificationRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateWithMessages(ctx context.Context, chat *entities.Chat, messages []*entities.Message) error {
	args := m.Called(ctx, chat, messages)
	return args.Error(0)
}

func (m *MockChatRepository) AppendMessages(ctx context.Context, chatID uuid.UUID, messages []*entities.Message) error {
	args := m.Called(ctx, chatID, messages)
	return args.Error(0)
}

func (m *MockChatRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chat), args.Error(1)
}

func (m *MockChatRepository) GetByClientKey(ctx context.Context, userID uuid.UUID, clientKey string) (*entities.Chat, error) {
	args := m.Called(ctx, userID, clientKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chat), args.Error(1)
}

func (m *MockChatRepository) GetWithMessages(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Chat), args.Error(1)
}

func (m *MockChatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.ChatSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChatSummary), args.Error(1)
}

func (m *MockChatRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// Mock CarPartRepository
type MockCarPartRepository struct {
	mock.Mock
}

func (m *MockCarPartRepository) Create(ctx context.Context, part *entities.CarPart) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockCarPartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CarPart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CarPart), args.Error(1)
}

func (m *MockCarPartRepository) List(ctx context.Context, filter entities.CarPartFilter) ([]*entities.CarPart, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.CarPart), args.Get(1).(int64), args.Error(2)
}

func (m *MockCarPartRepository) ListInStock(ctx context.Context) ([]*entities.CarPart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CarPart), args.Error(1)
}

func (m *MockCarPartRepository) Update(ctx context.Context, part *entities.CarPart) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockCarPartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock OilChangeRepository
type MockOilChangeRepository struct {
	mock.Mock
}

func (m *MockOilChangeRepository) Create(ctx context.Context, record *entities.OilChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOilChangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.OilChangeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OilChangeRecord), args.Error(1)
}

func (m *MockOilChangeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.OilChangeRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OilChangeRecord), args.Error(1)
}

func (m *MockOilChangeRepository) Latest(ctx context.Context, userID uuid.UUID) (*entities.OilChangeRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OilChangeRecord), args.Error(1)
}

func (m *MockOilChangeRepository) Update(ctx context.Context, record *entities.OilChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockOilChangeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Totals(ctx context.Context) (entities.StatsTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.StatsTotals), args.Error(1)
}

func (m *MockStatsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountChatsSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) RecentUsers(ctx context.Context, limit int) ([]entities.RecentUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RecentUser), args.Error(1)
}

func (m *MockStatsRepository) RecentChats(ctx context.Context, limit int) ([]entities.RecentChat, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RecentChat), args.Error(1)
}

func (m *MockStatsRepository) PopularCarModels(ctx context.Context, limit int) ([]entities.CarModelCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.CarModelCount), args.Error(1)
}

// Mock CodeSender
type MockCodeSender struct {
	mock.Mock
}

func (m *MockCodeSender) SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error {
	args := m.Called(ctx, email, code, ttl)
	return args.Error(0)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

// Mock ChatLocker
type MockChatLocker struct {
	mock.Mock
}

func (m *MockChatLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatLocker) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// scriptedModel replays one script per call: deltas then an optional error.
type scriptedModel struct {
	calls   int
	scripts []modelScript
	systems []string
}

type modelScript struct {
	deltas []string
	err    error
}

func (m *scriptedModel) Stream(ctx context.Context, system string, _ []entities.ConversationTurn, onDelta func(string) error) error {
	m.systems = append(m.systems, system)
	script := m.scripts[min(m.calls, len(m.scripts)-1)]
	m.calls++
	for _, d := range script.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	if script.err != nil {
		return script.err
	}
	return ctx.Err()
}
