package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mechamind.backend/internal/config"
)

const defaultSMTPTimeout = 15 * time.Second

// SMTPProvider sends through an SMTP relay such as Gmail.
type SMTPProvider struct {
	cfg config.SMTPConfig
}

func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Name() string { return "smtp" }

var dialTLS = func(d *net.Dialer, addr string, cfg *tls.Config) (net.Conn, error) {
	return tls.DialWithDialer(d, "tcp", addr, cfg)
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	timeout := p.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	client, conn, err := p.connect(ctx, deadline)
	if err != nil {
		return err
	}
	defer client.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if p.cfg.User != "" {
		auth := smtp.PlainAuth("", p.cfg.User, p.cfg.Password, p.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(p.cfg.FromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(buildMIME(p.from(), msg))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	if err := client.Quit(); err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
		return fmt.Errorf("smtp quit: %w", err)
	}
	return nil
}

func (p *SMTPProvider) from() string {
	name := p.cfg.FromName
	if name == "" {
		name = "MechaMind"
	}
	return mime.QEncoding.Encode("utf-8", name) + " <" + p.cfg.FromEmail + ">"
}

func (p *SMTPProvider) connect(ctx context.Context, deadline time.Time) (*smtp.Client, net.Conn, error) {
	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.Port))
	tlsCfg := &tls.Config{ServerName: p.cfg.Host, MinVersion: tls.VersionTLS12}
	dialer := &net.Dialer{Deadline: deadline}

	mode := strings.ToLower(p.cfg.TLSMode)
	if mode == "" {
		mode = "starttls"
	}

	var conn net.Conn
	var err error
	if mode == "tls" {
		conn, err = dialTLS(dialer, addr, tlsCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("smtp tls dial: %w", err)
		}
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("smtp dial: %w", err)
		}
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, p.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("smtp client: %w", err)
	}

	if mode == "starttls" {
		if err := client.StartTLS(tlsCfg); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}
	return client, conn, nil
}

// buildMIME renders a multipart/alternative message with text and HTML parts.
func buildMIME(from string, msg Message) string {
	boundary := "mm-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	lines := []string{
		"From: " + from,
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=\"" + boundary + "\"",
		"",
		"--" + boundary,
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		msg.Text,
		"--" + boundary,
		"Content-Type: text/html; charset=utf-8",
		"Content-Transfer-Encoding: 8bit",
		"",
		msg.HTML,
		"--" + boundary + "--",
		"",
	}
	return strings.Join(lines, "\r\n")
}
