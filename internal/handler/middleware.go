package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tomasen/realip"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
// The verification pages use inline styles, so style-src allows them.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// Throttle limits requests per client IP using a one-minute sliding window.
// It guards the verification endpoint against token guessing.
type Throttle struct {
	maxPerMinute int
	now          func() time.Time
	rejected     http.Handler

	mu      sync.Mutex
	clients map[string][]time.Time
}

// NewThrottle creates a Throttle with the given requests-per-minute limit.
// A non-positive limit disables throttling.
func NewThrottle(maxPerMinute int) *Throttle {
	return &Throttle{
		maxPerMinute: maxPerMinute,
		now:          time.Now,
		rejected:     http.HandlerFunc(tooManyRequestsJSON),
		clients:      make(map[string][]time.Time),
	}
}

// OnReject replaces the JSON 429 body with h. Retry-After is already set
// when h runs, and h must write the 429 status itself.
func (t *Throttle) OnReject(h http.Handler) *Throttle {
	t.rejected = h
	return t
}

func tooManyRequestsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(submitResponse{
		Message: "Too many requests. Please try again later.",
	})
}

// Run prunes idle clients every interval until ctx is done.
func (t *Throttle) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.prune()
		}
	}
}

func (t *Throttle) prune() {
	windowStart := t.now().Add(-time.Minute)
	t.mu.Lock()
	defer t.mu.Unlock()
	for ip, stamps := range t.clients {
		stamps = recent(stamps, windowStart)
		if len(stamps) == 0 {
			delete(t.clients, ip)
			continue
		}
		t.clients[ip] = stamps
	}
}

// Middleware returns an http.Handler that enforces the limit.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	if t.maxPerMinute <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := realip.FromRequest(r)
		now := t.now()

		t.mu.Lock()
		stamps := recent(t.clients[ip], now.Add(-time.Minute))
		if len(stamps) >= t.maxPerMinute {
			retryAfter := stamps[0].Add(time.Minute).Sub(now)
			t.clients[ip] = stamps
			t.mu.Unlock()

			slog.Warn("request throttled", "client_ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			t.rejected.ServeHTTP(w, r)
			return
		}
		t.clients[ip] = append(stamps, now)
		t.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// recent filters stamps in place, keeping those after windowStart.
func recent(stamps []time.Time, windowStart time.Time) []time.Time {
	valid := stamps[:0]
	for _, ts := range stamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	return valid
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
