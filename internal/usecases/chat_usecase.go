package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/domain/repositories"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/metrics"
	"mechamind.backend/pkg/utils"
)

// ChatModel streams an assistant reply for a conversation.
type ChatModel interface {
	Stream(ctx context.Context, system string, turns []entities.ConversationTurn, onDelta func(string) error) error
}

// ChatLocker guards chat creation for one idempotency key.
type ChatLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type ChatOptions struct {
	// MaxAttempts bounds model calls made before the first delta.
	MaxAttempts int
	RetryDelay  time.Duration
	// GenerateTimeout bounds the whole model call, retries included. The
	// call is not tied to the request, so it outlives a client disconnect.
	GenerateTimeout time.Duration
	LockTTL         time.Duration
	PersistTimeout  time.Duration
}

var sleepCtx = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ChatUsecase runs the streamed mechanic chat and its history.
type ChatUsecase struct {
	chatRepo repositories.ChatRepository
	partRepo repositories.CarPartRepository
	model    ChatModel
	locker   ChatLocker
	opts     ChatOptions
	now      func() time.Time
}

// NewChatUsecase creates a new chat usecase. locker may be nil.
func NewChatUsecase(
	chatRepo repositories.ChatRepository,
	partRepo repositories.CarPartRepository,
	model ChatModel,
	locker ChatLocker,
	opts ChatOptions,
) *ChatUsecase {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 2 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 10 * time.Second
	}
	return &ChatUsecase{
		chatRepo: chatRepo,
		partRepo: partRepo,
		model:    model,
		locker:   locker,
		opts:     opts,
		now:      time.Now,
	}
}

// PreparedChat is a validated request with its chat id resolved.
type PreparedChat struct {
	ChatID uuid.UUID
	UserID uuid.UUID
	// Existing is true when the exchange is appended to a stored chat.
	Existing  bool
	ClientKey *string
	Turns     []entities.ConversationTurn

	release func()
	once    sync.Once
}

// Close releases the creation lock, if one was taken. Safe to call twice.
func (p *PreparedChat) Close() {
	p.once.Do(func() {
		if p.release != nil {
			p.release()
		}
	})
}

// ChatResult is what the done frame reports.
type ChatResult struct {
	ChatID    uuid.UUID
	Answer    string
	Persisted bool
}

// ChatEvent is one item on the stream channel: a delta, the final result or an error.
type ChatEvent struct {
	Delta  string
	Result *ChatResult
	Err    error
}

func chatLockKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("chat-create:%s:%s", userID, key)
}

// Prepare checks ownership and assigns the chat id before any output is written.
func (u *ChatUsecase) Prepare(ctx context.Context, req *entities.ChatRequest) (*PreparedChat, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required: %w", domainerrors.ErrInvalidInput)
	}

	p := &PreparedChat{UserID: req.UserID, Turns: req.Messages}

	if req.ChatID != nil {
		if _, err := u.chatRepo.GetOwned(ctx, *req.ChatID, req.UserID); err != nil {
			return nil, err
		}
		p.ChatID = *req.ChatID
		p.Existing = true
		return p, nil
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		p.ChatID = utils.GenerateUUIDv7()
		return p, nil
	}
	p.ClientKey = &key

	if chat, err := u.chatRepo.GetByClientKey(ctx, req.UserID, key); err == nil {
		p.ChatID = chat.ID
		p.Existing = true
		return p, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if u.locker != nil {
		lockKey := chatLockKey(req.UserID, key)
		ok, err := u.locker.Acquire(ctx, lockKey, u.opts.LockTTL)
		switch {
		case err != nil:
			// The unique index still settles the race.
			logger.Warn(ctx, "Chat create lock unavailable", zap.Error(err))
		case !ok:
			return nil, fmt.Errorf("chat creation in progress: %w", domainerrors.ErrAlreadyExists)
		default:
			p.release = func() {
				if err := u.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
					logger.Warn(ctx, "Failed to release chat create lock", zap.Error(err))
				}
			}
		}
	}

	p.ChatID = utils.GenerateUUIDv7()
	return p, nil
}

// Start runs Stream on its own goroutine and reports deltas, then exactly one
// result or error, on the returned channel. Once ctx is done nothing more is
// sent, but the reply is still generated and recorded before the goroutine
// exits, even if nobody drains the channel.
func (u *ChatUsecase) Start(ctx context.Context, p *PreparedChat) <-chan ChatEvent {
	events := make(chan ChatEvent)
	go func() {
		defer close(events)
		defer p.Close()

		send := func(ev ChatEvent) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		result, err := u.Stream(ctx, p, func(delta string) error {
			return send(ChatEvent{Delta: delta})
		})
		if err != nil {
			_ = send(ChatEvent{Err: err})
			return
		}
		_ = send(ChatEvent{Result: result})
	}()
	return events
}

// Stream delivers the reply through onDelta and then records the exchange.
// The model is retried only while nothing has been delivered. When ctx ends or
// onDelta fails the caller is detached: deltas are no longer forwarded but the
// reply is still completed and recorded.
func (u *ChatUsecase) Stream(ctx context.Context, p *PreparedChat, onDelta func(string) error) (*ChatResult, error) {
	parts, loadErr := u.partRepo.ListInStock(ctx)
	if loadErr != nil {
		logger.Error(ctx, "Failed to load inventory for chat", zap.Error(loadErr))
	}
	system := SystemPrompt(parts, loadErr)

	genCtx, cancelGen := context.WithTimeout(context.WithoutCancel(ctx), u.opts.GenerateTimeout)
	defer cancelGen()

	var answer strings.Builder
	delivered := false
	detached := false
	forward := func(delta string) error {
		delivered = true
		answer.WriteString(delta)
		if detached {
			return nil
		}
		if ctx.Err() != nil {
			detached = true
			logger.Info(ctx, "Chat client left, finishing reply", zap.Stringer("chat_id", p.ChatID))
			return nil
		}
		if err := onDelta(delta); err != nil {
			detached = true
			logger.Info(ctx, "Chat delta not delivered, finishing reply", zap.Stringer("chat_id", p.ChatID), zap.Error(err))
		}
		return nil
	}

	for attempt := 1; ; attempt++ {
		err := u.model.Stream(genCtx, system, p.Turns, forward)
		if err == nil {
			break
		}
		if delivered || attempt >= u.opts.MaxAttempts || !domainerrors.IsRetryableUpstream(err) {
			metrics.LLMRequests.WithLabelValues("error").Inc()
			logger.Error(ctx, "Chat stream failed",
				zap.Stringer("chat_id", p.ChatID),
				zap.Int("attempt", attempt),
				zap.Bool("delivered", delivered),
				zap.Error(err),
			)
			return nil, err
		}

		metrics.LLMRequests.WithLabelValues("retry").Inc()
		delay := u.opts.RetryDelay * time.Duration(1<<(attempt-1))
		logger.Warn(ctx, "Retrying chat stream", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		if err := sleepCtx(genCtx, delay); err != nil {
			return nil, err
		}
	}
	metrics.LLMRequests.WithLabelValues("ok").Inc()

	result := &ChatResult{ChatID: p.ChatID, Answer: answer.String()}
	exchange := entities.Exchange{Question: lastQuestion(p.Turns), Answer: result.Answer}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.opts.PersistTimeout)
	defer cancel()

	chatID, err := u.persist(persistCtx, p, exchange)
	if err != nil {
		metrics.ChatPersistFailures.Inc()
		logger.Error(ctx, "Chat delivered but not recorded", zap.Stringer("chat_id", p.ChatID), zap.Error(err))
		return result, nil
	}
	metrics.ChatPersistTotal.Inc()
	result.ChatID = chatID
	result.Persisted = true
	return result, nil
}

func (u *ChatUsecase) persist(ctx context.Context, p *PreparedChat, ex entities.Exchange) (uuid.UUID, error) {
	if p.Existing {
		return p.ChatID, u.chatRepo.AppendMessages(ctx, p.ChatID, u.exchangeMessages(p.ChatID, ex))
	}

	now := u.now()
	chat := &entities.Chat{
		ID:        p.ChatID,
		UserID:    p.UserID,
		Title:     utils.TruncateRunes(ex.Question, entities.ChatTitleMaxRunes),
		ClientKey: p.ClientKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := u.chatRepo.CreateWithMessages(ctx, chat, u.exchangeMessages(chat.ID, ex))
	if err == nil {
		return chat.ID, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) || p.ClientKey == nil {
		return uuid.Nil, err
	}

	// Lost the first-turn race: append to the chat the other request created.
	existing, err := u.chatRepo.GetByClientKey(ctx, p.UserID, *p.ClientKey)
	if err != nil {
		return uuid.Nil, err
	}
	return existing.ID, u.chatRepo.AppendMessages(ctx, existing.ID, u.exchangeMessages(existing.ID, ex))
}

func (u *ChatUsecase) exchangeMessages(chatID uuid.UUID, ex entities.Exchange) []*entities.Message {
	now := u.now()
	return []*entities.Message{
		{ID: utils.GenerateUUIDv7(), ChatID: chatID, Role: entities.RoleUser, Content: ex.Question, CreatedAt: now},
		{ID: utils.GenerateUUIDv7(), ChatID: chatID, Role: entities.RoleAssistant, Content: ex.Answer, CreatedAt: now.Add(time.Millisecond)},
	}
}

// ListChats returns the caller's chats, newest first.
func (u *ChatUsecase) ListChats(ctx context.Context, userID uuid.UUID) ([]*entities.ChatSummary, error) {
	return u.chatRepo.ListByUser(ctx, userID)
}

// GetChat returns an owned chat with its messages in order.
func (u *ChatUsecase) GetChat(ctx context.Context, id, userID uuid.UUID) (*entities.Chat, error) {
	return u.chatRepo.GetWithMessages(ctx, id, userID)
}

func (u *ChatUsecase) DeleteChat(ctx context.Context, id, userID uuid.UUID) error {
	return u.chatRepo.DeleteOwned(ctx, id, userID)
}
