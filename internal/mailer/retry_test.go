package mailer

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockSender struct {
	sendFunc func(ctx context.Context, e *Email) error
	calls    int
}

func (m *mockSender) Send(ctx context.Context, e *Email) error {
	m.calls++
	if m.sendFunc != nil {
		return m.sendFunc(ctx, e)
	}
	return nil
}

func newTestRetrySender(next Sender, attempts int) (*RetrySender, *[]time.Duration) {
	var delays []time.Duration
	r := NewRetrySender(next, RetryPolicy{MaxAttempts: attempts, Backoff: 100 * time.Millisecond})
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return r, &delays
}

func TestRetrySender_SucceedsAfterTransientFailures(t *testing.T) {
	mock := &mockSender{}
	mock.sendFunc = func(ctx context.Context, e *Email) error {
		if mock.calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	}
	r, delays := newTestRetrySender(mock, 3)

	if err := r.Send(context.Background(), &Email{To: "a@example.com"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, *delays)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Errorf("delay %d: want %v, got %v", i, want[i], (*delays)[i])
		}
	}
}

func TestRetrySender_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := &mockSender{sendFunc: func(ctx context.Context, e *Email) error {
		return errors.New("timeout")
	}}
	r, _ := newTestRetrySender(mock, 3)

	err := r.Send(context.Background(), &Email{})
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if derr.Attempts != 3 || derr.Permanent {
		t.Errorf("expected 3 transient attempts, got %+v", derr)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetrySender_PermanentStopsImmediately(t *testing.T) {
	mock := &mockSender{sendFunc: func(ctx context.Context, e *Email) error {
		return &PermanentError{Err: errors.New("550 no such user")}
	}}
	r, delays := newTestRetrySender(mock, 5)

	err := r.Send(context.Background(), &Email{})
	var derr *DeliveryError
	if !errors.As(err, &derr) || !derr.Permanent {
		t.Fatalf("expected permanent DeliveryError, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 call, got %d", mock.calls)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff, got %v", *delays)
	}
	if !IsPermanent(err) {
		t.Error("IsPermanent should see through DeliveryError")
	}
}

func TestRetrySender_StopsOnCancelledContext(t *testing.T) {
	mock := &mockSender{sendFunc: func(ctx context.Context, e *Email) error {
		return errors.New("temporary")
	}}
	r, _ := newTestRetrySender(mock, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Send(ctx, &Email{})
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 call before cancellation stopped retries, got %d", mock.calls)
	}
}

func TestNewRetrySender_ClampsAttempts(t *testing.T) {
	mock := &mockSender{sendFunc: func(ctx context.Context, e *Email) error {
		return errors.New("down")
	}}
	r := NewRetrySender(mock, RetryPolicy{MaxAttempts: 0})
	_ = r.Send(context.Background(), &Email{})
	if mock.calls != 1 {
		t.Errorf("expected a single attempt, got %d", mock.calls)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
