package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mathbymoves/backend/internal/antispam"
	"github.com/mathbymoves/backend/internal/mailer"
	"github.com/mathbymoves/backend/internal/metrics"
	"github.com/mathbymoves/backend/internal/model"
	"github.com/mathbymoves/backend/internal/repository"
	"github.com/mathbymoves/backend/internal/validation"
)

const (
	maxTokenAttempts = 3
	verifyPath       = "/api/verify-email"

	msgDeliveryPermanent = "We could not deliver a verification email to this address. Please check it and try again."
	msgDeliveryRetry     = "Failed to send verification email. Please try again."
	msgInternal          = "Failed to send message"
)

// ContactConfig holds the non-interface dependencies of the contact service.
type ContactConfig struct {
	// TokenTTL bounds how long a pending token may be used. Zero disables expiry.
	TokenTTL time.Duration
	Metrics  *metrics.Metrics
	Now      func() time.Time
	NewToken func() (string, error)
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo      repository.ContactRepository
	mail      Mailer
	filter    SpamFilter
	limiter   SubmissionLimiter
	validator *validation.Validator

	tokenTTL time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	newToken func() (string, error)
}

// NewContactService creates a ContactService wired to its collaborators.
func NewContactService(
	repo repository.ContactRepository,
	mail Mailer,
	filter SpamFilter,
	limiter SubmissionLimiter,
	cfg ContactConfig,
) ContactService {
	s := &contactServiceImpl{
		repo:      repo,
		mail:      mail,
		filter:    filter,
		limiter:   limiter,
		validator: validation.New(),
		tokenTTL:  cfg.TokenTTL,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		newToken:  cfg.NewToken,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newToken == nil {
		s.newToken = NewVerificationToken
	}
	return s
}

// Submit implements the submission pipeline. Nothing is stored unless every
// check passes.
func (s *contactServiceImpl) Submit(ctx context.Context, sub *model.ContactSubmission, meta SubmitMeta) (*model.ContactMessage, error) {
	if !validation.EmailsMatch(sub) {
		s.countSubmission("mismatch")
		return nil, &Error{
			Kind:    KindValidation,
			Message: validation.MismatchMessage,
			Fields:  map[string]string{"confirmEmail": validation.MismatchMessage},
		}
	}

	if reason, rejected := s.filter.Check(antispam.Input{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
	}); rejected {
		s.countSubmission("spam")
		slog.Info("contact submission rejected as spam", "reason", string(reason), "client_ip", meta.ClientIP)
		return nil, &Error{Kind: KindSpam, Message: reason.Message()}
	}

	if err := s.validator.Validate(sub); err != nil {
		s.countSubmission("invalid")
		var verr *validation.Error
		if errors.As(err, &verr) {
			return nil, &Error{Kind: KindValidation, Message: verr.Message, Fields: verr.Fields}
		}
		return nil, internalError(msgInternal, err)
	}

	if dim, ok := s.limiter.Allow(meta.ClientIP, sub.Email); !ok {
		s.countSubmission("rate_limited")
		slog.Info("contact submission rate limited", "dimension", string(dim), "client_ip", meta.ClientIP)
		return nil, &Error{Kind: KindRateLimit, Message: dim.Message()}
	}

	msg := &model.ContactMessage{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store(ctx, msg); err != nil {
		s.countSubmission("error")
		slog.Error("failed to store contact message", "error", err)
		return nil, internalError(msgInternal, err)
	}

	verifyURL := buildVerifyURL(meta.BaseURL, msg.VerificationToken)
	if err := s.mail.SendVerification(ctx, msg, verifyURL); err != nil {
		s.countMail(mailer.KindVerification, err)
		s.countSubmission("delivery_failed")
		slog.Error("failed to send verification email", "email", msg.Email, "id", msg.ID, "error", err)
		if mailer.IsPermanent(err) {
			return nil, &Error{Kind: KindDelivery, Message: msgDeliveryPermanent, Err: err}
		}
		return nil, &Error{Kind: KindDelivery, Message: msgDeliveryRetry, Retryable: true, Err: err}
	}
	s.countMail(mailer.KindVerification, nil)
	s.countSubmission("accepted")
	slog.Info("verification email sent", "email", msg.Email, "id", msg.ID)

	return msg, nil
}

// store issues a token and persists msg, drawing a new token on collision.
func (s *contactServiceImpl) store(ctx context.Context, msg *model.ContactMessage) error {
	var err error
	for i := 0; i < maxTokenAttempts; i++ {
		msg.VerificationToken, err = s.newToken()
		if err != nil {
			return err
		}
		err = s.repo.Create(ctx, msg)
		if !errors.Is(err, repository.ErrDuplicateToken) {
			return err
		}
	}
	return err
}

// Verify implements the Pending → Verified transition.
func (s *contactServiceImpl) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	if token == "" {
		s.countVerification("invalid")
		return nil, &Error{Kind: KindValidation, Message: "verification token is required"}
	}

	msg, err := s.repo.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		s.countVerification("not_found")
		return nil, &Error{Kind: KindNotFound, Message: "verification link not found"}
	}
	if err != nil {
		s.countVerification("error")
		return nil, internalError("verification failed", err)
	}

	if msg.IsVerified {
		s.countVerification("already_verified")
		return &VerifyResult{Message: msg, AlreadyVerified: true}, nil
	}

	now := s.now()
	if s.tokenTTL > 0 && now.Sub(msg.CreatedAt) > s.tokenTTL {
		s.countVerification("expired")
		return nil, &Error{Kind: KindNotFound, Message: "verification link expired"}
	}

	changed, err := s.repo.UpdateVerification(ctx, msg.ID, true, now)
	if err != nil {
		s.countVerification("error")
		return nil, internalError("verification failed", err)
	}
	if !changed {
		// another request flipped it first and owns the forwarding
		s.countVerification("already_verified")
		msg.IsVerified = true
		return &VerifyResult{Message: msg, AlreadyVerified: true}, nil
	}
	msg.IsVerified = true
	verifiedAt := now.UTC()
	msg.VerifiedAt = &verifiedAt
	s.countVerification("verified")

	// The verification stands even if these sends fail.
	sendCtx := context.WithoutCancel(ctx)
	if err := s.mail.SendOwnerForward(sendCtx, msg); err != nil {
		slog.Error("failed to forward verified message", "id", msg.ID, "email", msg.Email, "error", err)
		s.countMail(mailer.KindOwnerForward, err)
	} else {
		slog.Info("verified message forwarded", "id", msg.ID, "email", msg.Email)
		s.countMail(mailer.KindOwnerForward, nil)
	}
	if err := s.mail.SendConfirmation(sendCtx, msg); err != nil {
		slog.Error("failed to send confirmation email", "id", msg.ID, "email", msg.Email, "error", err)
		s.countMail(mailer.KindConfirmation, err)
	} else {
		s.countMail(mailer.KindConfirmation, nil)
	}

	return &VerifyResult{Message: msg}, nil
}

// List returns every stored message.
func (s *contactServiceImpl) List(ctx context.Context) ([]*model.ContactMessage, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch messages", err)
	}
	return messages, nil
}

func buildVerifyURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + verifyPath + "?token=" + url.QueryEscape(token)
}

func (s *contactServiceImpl) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (s *contactServiceImpl) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(outcome).Inc()
	}
}

func (s *contactServiceImpl) countMail(kind string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.MailSent.WithLabelValues(kind, result).Inc()
}
