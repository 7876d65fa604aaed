// Package mailer delivers the contact form emails over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"

	"github.com/go-gomail/gomail"
)

// Email is a single outbound HTML message.
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers one Email.
type Sender interface {
	Send(ctx context.Context, e *Email) error
}

// PermanentError marks a rejection the relay will repeat on every attempt,
// such as a 5xx reply to RCPT TO.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent delivery failure: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err should not be retried.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// SMTPSender sends through an SMTP relay with gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSMTPSender creates an SMTPSender. Port 465 uses implicit TLS;
// other ports upgrade with STARTTLS when the relay offers it.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

// Send opens a connection, delivers e and closes the connection.
func (s *SMTPSender) Send(ctx context.Context, e *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", e.To)
	if e.ReplyTo != "" {
		m.SetHeader("Reply-To", e.ReplyTo)
	}
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/html", e.HTML)

	conn, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("mailer: dial %s:%d: %w", s.dialer.Host, s.dialer.Port, err)
	}
	defer conn.Close()

	if err := conn.Send(e.From, []string{e.To}, m); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) && tpErr.Code >= 500 {
			return &PermanentError{Err: err}
		}
		return fmt.Errorf("mailer: send to %s: %w", e.To, err)
	}
	return nil
}
