package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridSender(apiKey, from string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

func (s *SendGridSender) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail("Voltmart", s.from),
		subject,
		mail.NewEmail("", to),
		body,
		body,
	)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender is the dev/test sender: it only logs what would be delivered.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, _ string) error {
	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
