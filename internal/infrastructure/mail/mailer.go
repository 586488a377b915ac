package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mechamind.backend/internal/config"
	"mechamind.backend/pkg/logger"
	"mechamind.backend/pkg/metrics"
)

// Message is a rendered outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Provider delivers a message through one transport.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// ErrNoProviders is returned when no transport is configured.
var ErrNoProviders = errors.New("no mail provider configured")

// Dispatcher tries each provider in order until one accepts the message.
type Dispatcher struct {
	providers []Provider
}

func NewDispatcher(providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers}
}

// NewDispatcherFromConfig builds the providers named in cfg.ProviderOrder,
// skipping the ones that lack credentials.
func NewDispatcherFromConfig(cfg config.MailConfig) *Dispatcher {
	var providers []Provider
	for _, name := range cfg.ProviderOrder {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "smtp":
			if cfg.SMTP.Host != "" && cfg.SMTP.FromEmail != "" {
				providers = append(providers, NewSMTPProvider(cfg.SMTP))
			}
		case "resend":
			if cfg.Resend.APIKey != "" {
				providers = append(providers, NewResendProvider(cfg.Resend))
			}
		default:
			logger.Warn(context.Background(), "Unknown mail provider ignored", zap.String("provider", name))
		}
	}
	return NewDispatcher(providers...)
}

// Providers returns the configured provider names in order.
func (d *Dispatcher) Providers() []string {
	names := make([]string, 0, len(d.providers))
	for _, p := range d.providers {
		names = append(names, p.Name())
	}
	return names
}

// Send delivers msg through the first provider that succeeds.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if len(d.providers) == 0 {
		return ErrNoProviders
	}

	var errs []error
	for _, p := range d.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		err := p.Send(ctx, msg)
		if err == nil {
			metrics.MailDeliveries.WithLabelValues(p.Name(), "sent").Inc()
			logger.Info(ctx, "Email sent", zap.String("provider", p.Name()), zap.String("to", msg.To))
			return nil
		}
		metrics.MailDeliveries.WithLabelValues(p.Name(), "failed").Inc()
		logger.Warn(ctx, "Email provider failed", zap.String("provider", p.Name()), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return errors.Join(errs...)
}

// SendVerificationCode renders and sends the signup code email.
func (d *Dispatcher) SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error {
	msg, err := RenderVerificationEmail(email, code, ttl)
	if err != nil {
		return err
	}
	return d.Send(ctx, msg)
}
