// Package mailer is the email dispatch collaborator. Lifecycle operations
// only depend on the one-method Mailer interface, so tests substitute a
// double and deployments without an API key fall back to log-only delivery.
package mailer

import (
	"context"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.InfoContext(ctx, "email sent", "to", to, "subject", subject)
	}
	return err
}

// LogMailer stands in when no RESEND_API_KEY is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	slog.InfoContext(ctx, "email sent (log mode)", "to", to, "subject", subject)
	return nil
}
