package contact

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockContactRepo struct {
	last *Submission
	err  error
}

func (m *mockContactRepo) Create(_ context.Context, s *Submission) error {
	if m.err != nil {
		return m.err
	}
	m.last = s
	return nil
}

type mockContactNotifier struct {
	calls int
	err   error
}

func (m *mockContactNotifier) NotifyContact(_ context.Context, _ *Submission) error {
	m.calls++
	return m.err
}

func validSubmission() Submission {
	return Submission{
		Name:    "Jane Doe",
		Email:   "jane@x.com",
		Subject: "Shipping question",
		Message: "When does my katana ship?",
	}
}

func TestSubmit_Valid(t *testing.T) {
	repo := &mockContactRepo{}
	notifier := &mockContactNotifier{}
	svc := NewService(repo, notifier)

	err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)

	require.NotNil(t, repo.last)
	assert.NotEmpty(t, repo.last.ID)
	assert.Equal(t, StatusNew, repo.last.Status)
	assert.Equal(t, 1, notifier.calls)
}

func TestSubmit_MissingFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*Submission)
	}{
		{"name", func(s *Submission) { s.Name = "  " }},
		{"email", func(s *Submission) { s.Email = "" }},
		{"subject", func(s *Submission) { s.Subject = "" }},
		{"message", func(s *Submission) { s.Message = "\n" }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			repo := &mockContactRepo{}
			svc := NewService(repo, &mockContactNotifier{})

			sub := validSubmission()
			tc.mutate(&sub)

			err := svc.Submit(context.Background(), sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Nil(t, repo.last)
		})
	}
}

func TestSubmit_PersistenceError(t *testing.T) {
	repo := &mockContactRepo{err: errors.New("insert failed")}
	notifier := &mockContactNotifier{}
	svc := NewService(repo, notifier)

	err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Zero(t, notifier.calls, "no notification for a failed insert")
}

func TestSubmit_NotificationFailureNotSurfaced(t *testing.T) {
	repo := &mockContactRepo{}
	svc := NewService(repo, &mockContactNotifier{err: errors.New("resend 500")})

	err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.NotNil(t, repo.last)
}
