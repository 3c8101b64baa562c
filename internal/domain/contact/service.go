package contact

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier dispatches the operator notification for a new submission.
type Notifier interface {
	NotifyContact(ctx context.Context, s *Submission) error
}

// Service validates, persists, and announces contact submissions.
type Service struct {
	submissions Repository
	notifier    Notifier
}

// NewService creates a contact Service.
func NewService(submissions Repository, notifier Notifier) *Service {
	return &Service{submissions: submissions, notifier: notifier}
}

// Submit validates the trimmed fields, persists the submission with status
// "new", and sends one operator notification. The notification is
// best-effort: a send failure is logged, never returned.
func (s *Service) Submit(ctx context.Context, sub Submission) error {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Subject = strings.TrimSpace(sub.Subject)
	sub.Message = strings.TrimSpace(sub.Message)

	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", sub.Name},
		{"email", sub.Email},
		{"subject", sub.Subject},
		{"message", sub.Message},
	} {
		if f.value == "" {
			return &ValidationError{Field: f.name}
		}
	}

	sub.ID = uuid.New().String()
	sub.Status = StatusNew

	if err := s.submissions.Create(ctx, &sub); err != nil {
		return errors.Wrap(err, "create contact submission")
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyContact(ctx, &sub); err != nil {
			zctx.From(ctx).Warn("contact notification failed",
				zap.String("submission_id", sub.ID), zap.Error(err))
		}
	}
	return nil
}
