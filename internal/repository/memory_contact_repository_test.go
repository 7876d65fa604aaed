package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mathbymoves/backend/internal/model"
)

func newTestMessage(token string) *model.ContactMessage {
	return &model.ContactMessage{
		FirstName:         "Sean",
		LastName:          "Y",
		Email:             "sean@example.com",
		Subject:           model.SubjectAMC8Prep,
		Message:           "I would like to ask about your AMC 8 preparation schedule.",
		VerificationToken: token,
	}
}

func TestMemoryContactRepository_CreateAssignsIDAndCreatedAt(t *testing.T) {
	repo := NewMemoryContactRepository()
	msg := newTestMessage("tok-1")

	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.ID == "" {
		t.Error("expected ID to be set after Create")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set after Create")
	}
	if msg.IsVerified {
		t.Error("expected new message to be unverified")
	}
}

func TestMemoryContactRepository_CreateRejectsDuplicateToken(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestMessage("same")); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := repo.Create(ctx, newTestMessage("same"))
	if !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestMemoryContactRepository_GetByToken(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()
	msg := newTestMessage("abc123")
	_ = repo.Create(ctx, msg)

	found, err := repo.GetByToken(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if found.ID != msg.ID {
		t.Errorf("expected id %q, got %q", msg.ID, found.ID)
	}

	// returned value is a copy
	found.FirstName = "Mutated"
	again, _ := repo.GetByToken(ctx, "abc123")
	if again.FirstName != "Sean" {
		t.Errorf("store was mutated through returned pointer: %q", again.FirstName)
	}
}

func TestMemoryContactRepository_GetByToken_NotFound(t *testing.T) {
	repo := NewMemoryContactRepository()
	_, err := repo.GetByToken(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryContactRepository_ListOrderedByCreation(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, tok := range []string{"c", "a", "b"} {
		m := newTestMessage(tok)
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	messages, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	want := []string{"c", "a", "b"}
	for i, m := range messages {
		if m.VerificationToken != want[i] {
			t.Errorf("position %d: expected token %q, got %q", i, want[i], m.VerificationToken)
		}
	}
}

func TestMemoryContactRepository_ListEmpty(t *testing.T) {
	repo := NewMemoryContactRepository()
	messages, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", messages)
	}
}

func TestMemoryContactRepository_UpdateVerificationFlipsOnce(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()
	msg := newTestMessage("flip")
	_ = repo.Create(ctx, msg)
	now := time.Now()

	changed, err := repo.UpdateVerification(ctx, msg.ID, true, now)
	if err != nil || !changed {
		t.Fatalf("first update: changed=%v err=%v", changed, err)
	}
	changed, err = repo.UpdateVerification(ctx, msg.ID, true, now)
	if err != nil || changed {
		t.Fatalf("second update: changed=%v err=%v", changed, err)
	}

	found, _ := repo.GetByToken(ctx, "flip")
	if !found.IsVerified {
		t.Error("expected message to be verified")
	}
	if found.VerifiedAt == nil {
		t.Error("expected VerifiedAt to be set")
	}
}

func TestMemoryContactRepository_UpdateVerification_NotFound(t *testing.T) {
	repo := NewMemoryContactRepository()
	_, err := repo.UpdateVerification(context.Background(), "nope", true, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryContactRepository_ConcurrentVerifyChangesOnce(t *testing.T) {
	repo := NewMemoryContactRepository()
	ctx := context.Background()
	msg := newTestMessage("race")
	_ = repo.Create(ctx, msg)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.UpdateVerification(ctx, msg.ID, true, time.Now())
			if err != nil {
				t.Errorf("UpdateVerification: %v", err)
				return
			}
			if changed {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if changes != 1 {
		t.Errorf("expected exactly one change, got %d", changes)
	}
}

func TestOpen_Memory(t *testing.T) {
	repo, closeFn, err := Open(context.Background(), DriverMemory, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*MemoryContactRepository); !ok {
		t.Errorf("expected *MemoryContactRepository, got %T", repo)
	}
}

func TestOpen_PostgresRequiresURL(t *testing.T) {
	if _, _, err := Open(context.Background(), DriverPostgres, ""); err == nil {
		t.Error("expected error when DATABASE_URL is empty")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, _, err := Open(context.Background(), "redis", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}
