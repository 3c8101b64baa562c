// Package contact handles storefront contact form submissions.
package contact

import (
	"context"
	"fmt"
	"time"
)

// SubmissionStatus is the triage state of a contact submission, driven by the
// admin back office.
type SubmissionStatus string

// Submission statuses.
const (
	StatusNew      SubmissionStatus = "new"
	StatusRead     SubmissionStatus = "read"
	StatusReplied  SubmissionStatus = "replied"
	StatusArchived SubmissionStatus = "archived"
)

// Submission is one persisted contact form entry.
type Submission struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	Status    SubmissionStatus
	CreatedAt time.Time
}

// Repository defines persistence operations for contact submissions.
type Repository interface {
	Create(ctx context.Context, s *Submission) error
}

// ValidationError indicates a required contact field was empty after trimming.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
