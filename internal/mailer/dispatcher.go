package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mathbymoves/backend/internal/model"
)

// Email kinds, used as metric and log labels.
const (
	KindVerification = "verification"
	KindOwnerForward = "owner_forward"
	KindConfirmation = "confirmation"
)

// Dispatcher composes the three contact emails and hands them to a Sender.
type Dispatcher struct {
	sender     Sender
	from       string
	ownerEmail string
	ownerName  string
	tokenTTL   time.Duration
}

// DispatcherConfig holds addresses used in outgoing mail.
type DispatcherConfig struct {
	From       string
	OwnerEmail string
	OwnerName  string
	TokenTTL   time.Duration
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(sender Sender, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		from:       cfg.From,
		ownerEmail: cfg.OwnerEmail,
		ownerName:  cfg.OwnerName,
		tokenTTL:   cfg.TokenTTL,
	}
}

// SendVerification mails the double opt-in link to the submitter.
func (d *Dispatcher) SendVerification(ctx context.Context, msg *model.ContactMessage, verifyURL string) error {
	body, err := render(verificationTmpl, map[string]any{
		"FirstName":    msg.FirstName,
		"URL":          verifyURL,
		"OwnerName":    d.ownerName,
		"SubjectLabel": model.SubjectLabel(msg.Subject),
		"Message":      msg.Message,
		"Expiry":       humanDuration(d.tokenTTL),
	})
	if err != nil {
		return fmt.Errorf("mailer: render %s: %w", KindVerification, err)
	}
	return d.sender.Send(ctx, &Email{
		From:    d.from,
		To:      msg.Email,
		Subject: "Verify Your Email - Contact Form Submission",
		HTML:    body,
	})
}

// SendOwnerForward delivers a verified message to the site owner.
// Replies go straight to the submitter.
func (d *Dispatcher) SendOwnerForward(ctx context.Context, msg *model.ContactMessage) error {
	body, err := render(ownerForwardTmpl, map[string]any{
		"FullName":     msg.FullName(),
		"Email":        msg.Email,
		"SubjectLabel": model.SubjectLabel(msg.Subject),
		"Message":      msg.Message,
		"CreatedAt":    msg.CreatedAt.Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("mailer: render %s: %w", KindOwnerForward, err)
	}
	return d.sender.Send(ctx, &Email{
		From:    d.from,
		To:      d.ownerEmail,
		ReplyTo: msg.Email,
		Subject: "VERIFIED Contact Form Message: " + msg.Subject,
		HTML:    body,
	})
}

// SendConfirmation tells the submitter their message reached the owner.
func (d *Dispatcher) SendConfirmation(ctx context.Context, msg *model.ContactMessage) error {
	body, err := render(confirmationTmpl, map[string]any{
		"FirstName":    msg.FirstName,
		"OwnerName":    d.ownerName,
		"SubjectLabel": model.SubjectLabel(msg.Subject),
		"Message":      msg.Message,
	})
	if err != nil {
		return fmt.Errorf("mailer: render %s: %w", KindConfirmation, err)
	}
	return d.sender.Send(ctx, &Email{
		From:    d.from,
		To:      msg.Email,
		Subject: "Your message to " + d.ownerName + " has been delivered",
		HTML:    body,
	})
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	default:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
}
