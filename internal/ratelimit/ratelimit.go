// Package ratelimit implements fixed-window submission counters.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter counts events per key in fixed windows. The window for a key
// starts at its first event and resets once it has elapsed, so bursts
// across a window boundary are possible.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*fixedWindow
}

type fixedWindow struct {
	count int
	start time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter allowing limit events per key per window.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*fixedWindow),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records an event for key and reports whether it is within the limit.
// A rejected event does not increase the count.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > l.window {
		l.windows[key] = &fixedWindow{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Sweep drops windows that have already expired.
func (l *Limiter) Sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if now.Sub(w.start) > l.window {
			delete(l.windows, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Run sweeps expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Dimension names the counter that rejected a submission.
type Dimension string

const (
	DimensionIP    Dimension = "ip"
	DimensionEmail Dimension = "email"
)

// Message returns the user facing text for a tripped dimension.
func (d Dimension) Message() string {
	if d == DimensionEmail {
		return "Too many submissions from this email address. Please wait 15 minutes."
	}
	return "Too many submissions from this location. Please wait 15 minutes."
}

// SubmissionLimiter combines the per-address and per-email counters.
type SubmissionLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewSubmissionLimiter creates the two counters sharing one window.
func NewSubmissionLimiter(perIP, perEmail int, window time.Duration, opts ...Option) *SubmissionLimiter {
	return &SubmissionLimiter{
		byIP:    New(perIP, window, opts...),
		byEmail: New(perEmail, window, opts...),
	}
}

// Allow checks the address counter first, then the lowercased email counter.
// An address hit is recorded even if the email counter then rejects.
func (s *SubmissionLimiter) Allow(ip, email string) (Dimension, bool) {
	if !s.byIP.Allow(ip) {
		return DimensionIP, false
	}
	if !s.byEmail.Allow(strings.ToLower(email)) {
		return DimensionEmail, false
	}
	return "", true
}

// Run sweeps both counters until ctx is done.
func (s *SubmissionLimiter) Run(ctx context.Context, interval time.Duration) {
	go s.byEmail.Run(ctx, interval)
	s.byIP.Run(ctx, interval)
}
