package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mechamind.backend/internal/config"
)

const (
	defaultResendBaseURL = "https://api.resend.com"
	defaultResendFrom    = "MechaMind <onboarding@resend.dev>"
)

// ResendProvider sends through the Resend HTTP API.
type ResendProvider struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

func NewResendProvider(cfg config.ResendConfig) *ResendProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	from := cfg.From
	if from == "" {
		from = defaultResendFrom
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ResendProvider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		from:    from,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *ResendProvider) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendRequest{
		From:    p.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr resendError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("resend: status %d", resp.StatusCode)
}
