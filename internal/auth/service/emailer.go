package service

import (
	"context"

	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
)

// EmailSender delivers password reset tokens to users.
type EmailSender interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// LogEmailSender writes reset tokens to the application log instead of
// sending mail. It is the default until an SMTP sender is configured.
type LogEmailSender struct {
	log *logger.Logger
}

func NewLogEmailSender(log *logger.Logger) *LogEmailSender {
	return &LogEmailSender{log: log}
}

func (s *LogEmailSender) SendPasswordReset(ctx context.Context, to, token string) error {
	s.log.WithFields(ctx, logger.Fields{
		"email":  to,
		"action": "password_reset_email",
	}).Infof("password reset token issued: %s", token)

	return nil
}

// NoopEmailSender discards reset emails. Used in tests.
type NoopEmailSender struct{}

func (NoopEmailSender) SendPasswordReset(context.Context, string, string) error {
	return nil
}
