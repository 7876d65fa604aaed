package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// openTestPool connects to DATABASE_URL; tests skip when it is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := NewPool(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPgContactRepository_CreateAndVerify(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgContactRepository(pool)
	ctx := context.Background()

	token := fmt.Sprintf("pgtest%d", time.Now().UnixNano())
	msg := newTestMessage(token)
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM contact_messages WHERE id = $1", msg.ID)
	})
	if msg.ID == "" {
		t.Error("expected ID to be set after Create")
	}

	found, err := repo.GetByToken(ctx, token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if found.Email != msg.Email {
		t.Errorf("expected email %q, got %q", msg.Email, found.Email)
	}
	if found.IsVerified {
		t.Error("expected unverified message")
	}

	changed, err := repo.UpdateVerification(ctx, msg.ID, true, time.Now())
	if err != nil || !changed {
		t.Fatalf("first UpdateVerification: changed=%v err=%v", changed, err)
	}
	changed, err = repo.UpdateVerification(ctx, msg.ID, true, time.Now())
	if err != nil || changed {
		t.Fatalf("second UpdateVerification: changed=%v err=%v", changed, err)
	}

	found, _ = repo.GetByToken(ctx, token)
	if !found.IsVerified || found.VerifiedAt == nil {
		t.Errorf("expected verified message with VerifiedAt, got %+v", found)
	}

	if err := repo.Create(ctx, newTestMessage(token)); !errors.Is(err, ErrDuplicateToken) {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestPgContactRepository_NotFound(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgContactRepository(pool)
	ctx := context.Background()

	if _, err := repo.GetByToken(ctx, "never-issued-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByToken: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.UpdateVerification(ctx, "00000000-0000-0000-0000-000000000000", true, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateVerification: expected ErrNotFound, got %v", err)
	}
}
