package repository

import (
	"context"
	"time"

	"github.com/mathbymoves/backend/internal/model"
)

// DB is the liveness check used by the health endpoint.
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	DB

	// Create stores msg and populates msg.ID (and CreatedAt when zero).
	Create(ctx context.Context, msg *model.ContactMessage) error

	// List returns every stored message ordered by creation time.
	List(ctx context.Context) ([]*model.ContactMessage, error)

	// GetByToken returns the message issued with token, or ErrNotFound.
	GetByToken(ctx context.Context, token string) (*model.ContactMessage, error)

	// UpdateVerification sets the verification flag of message id.
	// changed is false when the flag already had the requested value,
	// which lets callers act on the false→true flip exactly once.
	UpdateVerification(ctx context.Context, id string, verified bool, at time.Time) (changed bool, err error)
}
