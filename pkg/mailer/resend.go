package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendMailer delivers messages through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendMailer constructs a mailer with the given API key and sender
// address.
func NewResendMailer(apiKey, from string, logger *zap.Logger) *ResendMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from, logger: logger}
}

// Send delivers one message and returns the provider message id.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		m.logger.Warn("resend send failed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return "", fmt.Errorf("resend send failed: %w", err)
	}

	m.logger.Info("reminder email sent", zap.String("message_id", sent.Id), zap.String("subject", msg.Subject))
	return sent.Id, nil
}
