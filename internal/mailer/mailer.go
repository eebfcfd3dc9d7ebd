// Package mailer abstracts outbound email. The default implementation only
// logs, which is what development and tests want; production deployments
// plug in a real sender.
package mailer

import (
	"context"
	"fmt"

	"chirp/internal/middleware"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes would-be emails to the structured log.
type LogMailer struct {
	From string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{From: from}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	middleware.Logger.InfoContext(ctx, "email sent",
		"from", m.From, "to", to, "subject", subject, "body_len", len(body))
	return nil
}

// PasswordResetBody renders the reset email body with the clickable link.
func PasswordResetBody(baseURL, token string) string {
	return fmt.Sprintf("You requested a password reset.\n\nReset your password: %s/reset-password?token=%s\n\nIf you did not request this, ignore this email.", baseURL, token)
}

// VerificationBody renders the email verification body.
func VerificationBody(baseURL, key string) string {
	return fmt.Sprintf("Welcome! Please verify your email address.\n\nVerify: %s/verify-email?key=%s", baseURL, key)
}
