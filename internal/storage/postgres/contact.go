package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steelhaven/storefront/internal/domain/contact"
)

const createContactSQL = `INSERT INTO contact_submissions
	(id, name, email, phone, subject, message, status)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create persists a new contact submission.
func (r *ContactRepository) Create(ctx context.Context, s *contact.Submission) error {
	_, err := r.pool.Exec(ctx, createContactSQL,
		s.ID, s.Name, s.Email, s.Phone, s.Subject, s.Message, s.Status,
	)
	if err != nil {
		return fmt.Errorf("creating contact submission %q: %w", s.ID, err)
	}
	return nil
}
