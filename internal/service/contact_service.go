package service

import (
	"context"

	"github.com/mathbymoves/backend/internal/antispam"
	"github.com/mathbymoves/backend/internal/model"
	"github.com/mathbymoves/backend/internal/ratelimit"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit runs the form through validation, the abuse filter and the rate
	// limiter, stores it as pending and mails the verification link.
	Submit(ctx context.Context, sub *model.ContactSubmission, meta SubmitMeta) (*model.ContactMessage, error)

	// Verify consumes a verification token. The first successful call marks
	// the message verified and forwards it to the owner.
	Verify(ctx context.Context, token string) (*VerifyResult, error)

	// List returns every stored message.
	List(ctx context.Context) ([]*model.ContactMessage, error)
}

// SubmitMeta carries request details the pipeline needs.
type SubmitMeta struct {
	ClientIP string
	// BaseURL is the scheme://host the verification link points at.
	BaseURL string
}

// VerifyResult describes the outcome of a successful Verify call.
type VerifyResult struct {
	Message         *model.ContactMessage
	AlreadyVerified bool
}

// Mailer sends the contact emails.
type Mailer interface {
	SendVerification(ctx context.Context, msg *model.ContactMessage, verifyURL string) error
	SendOwnerForward(ctx context.Context, msg *model.ContactMessage) error
	SendConfirmation(ctx context.Context, msg *model.ContactMessage) error
}

// SpamFilter is satisfied by *antispam.Filter.
type SpamFilter interface {
	Check(in antispam.Input) (antispam.Reason, bool)
}

// SubmissionLimiter is satisfied by *ratelimit.SubmissionLimiter.
type SubmissionLimiter interface {
	Allow(ip, email string) (ratelimit.Dimension, bool)
}
