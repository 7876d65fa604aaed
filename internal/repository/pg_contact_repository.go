package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mathbymoves/backend/internal/model"
)

const uniqueViolation = "23505"

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Ping checks the pool connection.
func (r *PgContactRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Create inserts a new contact_messages row and populates msg.ID and
// msg.CreatedAt from the RETURNING clause.
func (r *PgContactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages
		   (first_name, last_name, email, subject, message, verification_token, is_verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		msg.FirstName, msg.LastName, msg.Email, msg.Subject, msg.Message,
		msg.VerificationToken, msg.IsVerified, createdAt,
	).Scan(&msg.ID, &msg.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateToken
	}
	return err
}

const selectContactColumns = `SELECT id, first_name, last_name, email, subject, message,
	verification_token, is_verified, created_at, verified_at
	FROM contact_messages`

// List returns all contact messages, oldest first.
func (r *PgContactRepository) List(ctx context.Context) ([]*model.ContactMessage, error) {
	rows, err := r.pool.Query(ctx, selectContactColumns+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetByToken returns the message with the given verification token.
func (r *PgContactRepository) GetByToken(ctx context.Context, token string) (*model.ContactMessage, error) {
	m, err := scanContact(r.pool.QueryRow(ctx, selectContactColumns+` WHERE verification_token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateVerification sets is_verified only when it differs, so the row
// count tells whether this call performed the flip.
func (r *PgContactRepository) UpdateVerification(ctx context.Context, id string, verified bool, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_messages
		 SET is_verified = $2,
		     verified_at = CASE WHEN $2 THEN $3::timestamptz ELSE NULL END
		 WHERE id = $1 AND is_verified <> $2`,
		id, verified, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM contact_messages WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func scanContact(row pgx.Row) (*model.ContactMessage, error) {
	var m model.ContactMessage
	if err := row.Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Subject, &m.Message,
		&m.VerificationToken, &m.IsVerified, &m.CreatedAt, &m.VerifiedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
