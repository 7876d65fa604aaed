package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mathbymoves/backend/internal/model"
)

type recordingSender struct {
	sent []*Email
}

func (r *recordingSender) Send(_ context.Context, e *Email) error {
	r.sent = append(r.sent, e)
	return nil
}

func newTestDispatcher(ttl time.Duration) (*Dispatcher, *recordingSender) {
	rec := &recordingSender{}
	d := NewDispatcher(rec, DispatcherConfig{
		From:       "noreply@example.com",
		OwnerEmail: "owner@example.com",
		OwnerName:  "Vedant",
		TokenTTL:   ttl,
	})
	return d, rec
}

func testMessage() *model.ContactMessage {
	return &model.ContactMessage{
		ID:        "id-1",
		FirstName: "Sean",
		LastName:  "Y",
		Email:     "sean@example.com",
		Subject:   model.SubjectAMC8Prep,
		Message:   "I would like to ask about <b>AMC 8</b> preparation & pricing.",
		CreatedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestDispatcher_SendVerification(t *testing.T) {
	d, rec := newTestDispatcher(24 * time.Hour)
	url := "https://example.com/api/verify-email?token=abc"

	if err := d.SendVerification(context.Background(), testMessage(), url); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(rec.sent))
	}
	e := rec.sent[0]
	if e.To != "sean@example.com" || e.From != "noreply@example.com" {
		t.Errorf("unexpected envelope: %+v", e)
	}
	if e.Subject != "Verify Your Email - Contact Form Submission" {
		t.Errorf("unexpected subject %q", e.Subject)
	}
	for _, want := range []string{url, "Hello Sean", "AMC 8 Preparation", "expire in 24 hours", "forwarded to Vedant"} {
		if !strings.Contains(e.HTML, want) {
			t.Errorf("verification body missing %q", want)
		}
	}
	if strings.Contains(e.HTML, "<b>AMC 8</b>") {
		t.Error("user supplied HTML must be escaped")
	}
}

func TestDispatcher_SendVerification_NoExpiry(t *testing.T) {
	d, rec := newTestDispatcher(0)
	_ = d.SendVerification(context.Background(), testMessage(), "https://example.com/v?token=x")
	if strings.Contains(rec.sent[0].HTML, "expire in") {
		t.Error("expected no expiry sentence when TTL is zero")
	}
}

func TestDispatcher_SendOwnerForward(t *testing.T) {
	d, rec := newTestDispatcher(time.Hour)
	if err := d.SendOwnerForward(context.Background(), testMessage()); err != nil {
		t.Fatalf("SendOwnerForward: %v", err)
	}
	e := rec.sent[0]
	if e.To != "owner@example.com" {
		t.Errorf("expected owner recipient, got %q", e.To)
	}
	if e.ReplyTo != "sean@example.com" {
		t.Errorf("expected reply-to submitter, got %q", e.ReplyTo)
	}
	if e.Subject != "VERIFIED Contact Form Message: amc8-prep" {
		t.Errorf("unexpected subject %q", e.Subject)
	}
	if !strings.Contains(e.HTML, "Sean Y") || !strings.Contains(e.HTML, "(VERIFIED)") {
		t.Errorf("forward body missing sender details: %s", e.HTML)
	}
}

func TestDispatcher_SendConfirmation(t *testing.T) {
	d, rec := newTestDispatcher(time.Hour)
	if err := d.SendConfirmation(context.Background(), testMessage()); err != nil {
		t.Fatalf("SendConfirmation: %v", err)
	}
	e := rec.sent[0]
	if e.To != "sean@example.com" {
		t.Errorf("expected submitter recipient, got %q", e.To)
	}
	if !strings.Contains(e.HTML, "24-48 hours") {
		t.Error("confirmation should mention response time")
	}
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                "",
		time.Hour:        "1 hour",
		48 * time.Hour:   "48 hours",
		90 * time.Minute: "90 minutes",
	}
	for in, want := range cases {
		if got := humanDuration(in); got != want {
			t.Errorf("humanDuration(%v): want %q, got %q", in, want, got)
		}
	}
}
