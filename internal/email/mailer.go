// Package email renders and delivers transactional mail through the Resend
// API: operator order notifications, customer order confirmations, and
// contact form notifications.
package email

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/resend/resend-go/v2"
)

// Message is a single outbound email. To supports multiple recipients.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer delivers messages. Implementations are swappable for testing.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer delivers messages through the Resend transactional email API.
type ResendMailer struct {
	client *resend.Client
}

var _ Mailer = (*ResendMailer)(nil)

// NewResendMailer creates a mailer authenticated with the given API key.
func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

// Send delivers one message. The context bounds the underlying HTTP request.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return errors.Wrap(err, "resend send")
	}
	return nil
}
