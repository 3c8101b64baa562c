package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/steelhaven/storefront/internal/domain/contact"
	"github.com/steelhaven/storefront/internal/domain/order"
)

// Config holds the sender identity and routing addresses. ContactTo and
// OrdersTo accept comma-separated recipient lists.
type Config struct {
	From      string
	FromName  string
	ContactTo string
	OrdersTo  string
	ReplyTo   string
}

// Notifier renders and sends the storefront's transactional emails. It
// implements order.Notifier and contact.Notifier.
type Notifier struct {
	mailer Mailer
	cfg    Config
}

var (
	_ order.Notifier   = (*Notifier)(nil)
	_ contact.Notifier = (*Notifier)(nil)
)

// NewNotifier creates a Notifier sending through the given mailer.
func NewNotifier(mailer Mailer, cfg Config) *Notifier {
	return &Notifier{mailer: mailer, cfg: cfg}
}

// NotifyOperator sends the new-order notification to the operator inbox.
func (n *Notifier) NotifyOperator(ctx context.Context, o *order.Order, items []order.Item) error {
	html, err := renderOrderNotification(n.cfg.FromName, o, items)
	if err != nil {
		return err
	}

	replyTo := n.cfg.ReplyTo
	if replyTo == "" {
		replyTo = o.CustomerEmail
	}

	return n.mailer.Send(ctx, Message{
		From:    n.fromHeader(),
		To:      splitRecipients(n.cfg.OrdersTo),
		ReplyTo: replyTo,
		Subject: fmt.Sprintf("[Order] %s - $%s", o.OrderNumber, money(o.TotalAmount)),
		HTML:    html,
	})
}

// ConfirmCustomer sends the order confirmation to the customer. When the
// sender is a Resend test address the confirmation is mirrored to the
// operator inbox instead, since test senders cannot mail arbitrary
// recipients.
func (n *Notifier) ConfirmCustomer(ctx context.Context, o *order.Order, items []order.Item) error {
	html, err := renderCustomerConfirmation(n.cfg.FromName, o, items)
	if err != nil {
		return err
	}

	to := []string{o.CustomerEmail}
	subject := fmt.Sprintf("Order Confirmation - %s", o.OrderNumber)
	if n.testSender() {
		to = splitRecipients(n.cfg.OrdersTo)
		subject = fmt.Sprintf("Order Confirmation - %s (customer: %s)", o.OrderNumber, o.CustomerEmail)
	}

	return n.mailer.Send(ctx, Message{
		From:    n.fromHeader(),
		To:      to,
		Subject: subject,
		HTML:    html,
	})
}

// NotifyContact sends the contact form notification to the operator inbox.
func (n *Notifier) NotifyContact(ctx context.Context, s *contact.Submission) error {
	html, err := renderContactNotification(n.cfg.FromName, s)
	if err != nil {
		return err
	}

	replyTo := n.cfg.ReplyTo
	if replyTo == "" {
		replyTo = s.Email
	}

	return n.mailer.Send(ctx, Message{
		From:    n.fromHeader(),
		To:      splitRecipients(n.cfg.ContactTo),
		ReplyTo: replyTo,
		Subject: fmt.Sprintf("[Contact] %s", s.Subject),
		HTML:    html,
	})
}

// fromHeader formats the From address with the display name when set.
func (n *Notifier) fromHeader() string {
	if n.cfg.FromName == "" {
		return n.cfg.From
	}
	return fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
}

func (n *Notifier) testSender() bool {
	return strings.HasSuffix(n.cfg.From, "@resend.dev")
}

// splitRecipients parses a comma-separated recipient list, dropping empties.
func splitRecipients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NopMailer discards every message. Used when no Resend API key is
// configured so checkout still works in development.
type NopMailer struct{}

var _ Mailer = NopMailer{}

// Send drops the message.
func (NopMailer) Send(_ context.Context, _ Message) error {
	return nil
}
