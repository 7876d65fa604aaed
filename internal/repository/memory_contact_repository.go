package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mathbymoves/backend/internal/model"
)

// MemoryContactRepository keeps contact messages in process memory.
// Nothing is evicted and nothing survives a restart.
type MemoryContactRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.ContactMessage
	byToken map[string]string // token → id
}

// NewMemoryContactRepository creates an empty MemoryContactRepository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{
		byID:    make(map[string]*model.ContactMessage),
		byToken: make(map[string]string),
	}
}

// Ensure MemoryContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*MemoryContactRepository)(nil)

// Ping always succeeds.
func (r *MemoryContactRepository) Ping(_ context.Context) error {
	return nil
}

// Create assigns a fresh ID and stores a copy of msg.
func (r *MemoryContactRepository) Create(_ context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byToken[msg.VerificationToken]; taken {
		return ErrDuplicateToken
	}

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	stored := *msg
	r.byID[stored.ID] = &stored
	r.byToken[stored.VerificationToken] = stored.ID
	return nil
}

// List returns copies of all messages, oldest first.
func (r *MemoryContactRepository) List(_ context.Context) ([]*model.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]*model.ContactMessage, 0, len(r.byID))
	for _, m := range r.byID {
		c := *m
		messages = append(messages, &c)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// GetByToken returns a copy of the message issued with token.
func (r *MemoryContactRepository) GetByToken(_ context.Context, token string) (*model.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

// UpdateVerification flips the verification flag under the write lock so
// concurrent callers observe exactly one change.
func (r *MemoryContactRepository) UpdateVerification(_ context.Context, id string, verified bool, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if m.IsVerified == verified {
		return false, nil
	}
	m.IsVerified = verified
	if verified {
		t := at.UTC()
		m.VerifiedAt = &t
	} else {
		m.VerifiedAt = nil
	}
	return true, nil
}
