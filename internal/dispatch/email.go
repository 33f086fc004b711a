package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"vigil-go/internal/config"
)

// EmailSender delivers one message to one recipient.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers email over plain SMTP.
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates an SMTP-backed email sender from config.
func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{
		addr: cfg.Addr(),
		host: cfg.Host,
		from: from,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// Send delivers the message to a single recipient.
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body))
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, msg)
}

// LogSender logs email instead of delivering it. Used when no SMTP transport
// is configured (memory mode, local development).
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a logging email sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (log transport)",
		"to", to,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}
