package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
	"mechamind.backend/internal/interfaces/http/response"
	"mechamind.backend/internal/interfaces/http/schema"
	"mechamind.backend/internal/usecases"
	"mechamind.backend/pkg/logger"
)

const (
	// IdempotencyKeyHeader names the client key for first-turn retries.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ChatIDHeader carries the resolved chat id before the body is streamed.
	ChatIDHeader = "X-Chat-Id"

	maxChatBodyBytes = 1 << 20
)

// ChatHandler serves the streamed chat and the chat history
type ChatHandler struct {
	chatUsecase *usecases.ChatUsecase
	validator   *schema.Validator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatUsecase *usecases.ChatUsecase, validator *schema.Validator) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase, validator: validator}
}

type chatRequestBody struct {
	Messages []entities.ConversationTurn `json:"messages"`
	ChatID   *string                     `json:"chatId"`
}

type deltaFrame struct {
	Delta string `json:"delta"`
}

type doneFrame struct {
	ChatID    uuid.UUID `json:"chatId"`
	Persisted bool      `json:"persisted"`
}

// Chat streams the assistant reply as server-sent events
// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChatBodyBytes))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("failed to read body"))
		return
	}
	var body chatRequestBody
	if err := h.validator.Validate(raw); err != nil {
		appErr := domainerrors.FromError(err)
		if json.Unmarshal(raw, &body) == nil && len(body.Messages) == 0 {
			appErr = appErr.WithCode(domainerrors.CodeMessagesRequired)
		}
		response.Error(c, appErr)
		return
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	req := &entities.ChatRequest{
		UserID:         userID,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
		Messages:       body.Messages,
	}
	if body.ChatID != nil {
		id, err := uuid.Parse(*body.ChatID)
		if err != nil {
			response.Error(c, domainerrors.NotFound("chat not found").WithCode(domainerrors.CodeChatNotFound))
			return
		}
		req.ChatID = &id
	}

	ctx := c.Request.Context()
	prepared, err := h.chatUsecase.Prepare(ctx, req)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeChatNotFound))
		return
	}
	c.Header(ChatIDHeader, prepared.ChatID.String())

	events := h.chatUsecase.Start(ctx, prepared)

	// Nothing is written until the first event so a failure before any
	// delta still gets a normal status code.
	first, ok := <-events
	if !ok {
		return
	}
	if first.Err != nil {
		response.Error(c, first.Err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if !h.writeEvent(c, first) {
		return
	}
	// A departed client cancels the request context, which ends Start and
	// closes the channel.
	for ev := range events {
		if !h.writeEvent(c, ev) {
			return
		}
	}
}

// writeEvent writes one frame and reports whether more frames follow.
func (h *ChatHandler) writeEvent(c *gin.Context, ev usecases.ChatEvent) bool {
	switch {
	case ev.Err != nil:
		_, body := response.Status(c, ev.Err)
		writeFrame(c, "error", body)
		return false
	case ev.Result != nil:
		writeFrame(c, "done", doneFrame{ChatID: ev.Result.ChatID, Persisted: ev.Result.Persisted})
		return false
	default:
		writeFrame(c, "", deltaFrame{Delta: ev.Delta})
		return true
	}
}

func writeFrame(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to encode stream frame", zap.Error(err))
		return
	}
	w := c.Writer
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.Flush()
}

// ListChats returns the caller's chats, newest first
// GET /api/v1/chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	chats, err := h.chatUsecase.ListChats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if chats == nil {
		chats = []*entities.ChatSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"chats": chats})
}

// GetChat returns one owned chat with its messages
// GET /api/v1/chats/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, domainerrors.CodeChatNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	chat, err := h.chatUsecase.GetChat(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeChatNotFound))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chat": chat})
}

// DeleteChat removes an owned chat and its messages
// DELETE /api/v1/chats/:id
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := pathID(c, domainerrors.CodeChatNotFound)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.chatUsecase.DeleteChat(c.Request.Context(), id, userID); err != nil {
		response.Error(c, notFoundAs(err, domainerrors.CodeChatNotFound))
		return
	}
	response.Notice(c, http.StatusOK, "DELETED", gin.H{"success": true})
}
