package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DeliveryError is returned by RetrySender once it gives up.
type DeliveryError struct {
	Attempts  int
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// RetryPolicy bounds how often a transient failure is retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // delay before the second attempt, doubled each time
}

// RetrySender retries transient failures of the wrapped Sender.
type RetrySender struct {
	next   Sender
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrySender wraps next with policy.
func NewRetrySender(next Sender, policy RetryPolicy) *RetrySender {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetrySender{next: next, policy: policy, sleep: sleepContext}
}

// Send delivers e, retrying transient errors with exponential backoff.
// Permanent errors and context cancellation stop immediately.
func (r *RetrySender) Send(ctx context.Context, e *Email) error {
	delay := r.policy.Backoff
	var err error
	for attempt := 1; ; attempt++ {
		err = r.next.Send(ctx, e)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return &DeliveryError{Attempts: attempt, Permanent: true, Err: err}
		}
		if attempt >= r.policy.MaxAttempts {
			return &DeliveryError{Attempts: attempt, Err: err}
		}

		slog.Warn("mail send failed, retrying",
			"to", e.To,
			"attempt", attempt,
			"backoff", delay.String(),
			"error", err,
		)
		if serr := r.sleep(ctx, delay); serr != nil {
			return &DeliveryError{Attempts: attempt, Err: err}
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
