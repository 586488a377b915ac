package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"mechamind.backend/internal/domain/entities"
	domainerrors "mechamind.backend/internal/domain/errors"
)

const DefaultModel = "gemini-2.5-flash-lite"

// streamFunc matches genai Models.GenerateContentStream.
type streamFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]

// GeminiClient streams chat completions from the Gemini API.
type GeminiClient struct {
	model  string
	stream streamFunc
}

var newGenAIClient = genai.NewClient

// NewGeminiClient creates a client for the Gemini developer API.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{model: model, stream: client.Models.GenerateContentStream}, nil
}

// Stream sends the conversation and calls onDelta for every non-empty text chunk in
// arrival order. An error from onDelta stops the stream and is returned as is.
func (c *GeminiClient) Stream(ctx context.Context, system string, turns []entities.ConversationTurn, onDelta func(string) error) error {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	for resp, err := range c.stream(ctx, c.model, toContents(turns), cfg) {
		if err != nil {
			return Classify(err)
		}
		if resp == nil {
			continue
		}
		if text := resp.Text(); text != "" {
			if err := onDelta(text); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func toContents(turns []entities.ConversationTurn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == entities.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return contents
}

// Classify maps an upstream failure to the domain error callers report.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429"):
		return fmt.Errorf("%w: %s", domainerrors.ErrUpstreamRateLimited, msg)
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "Error 503"):
		return fmt.Errorf("%w: %s", domainerrors.ErrUpstreamUnavailable, msg)
	default:
		return fmt.Errorf("gemini stream: %w", err)
	}
}
