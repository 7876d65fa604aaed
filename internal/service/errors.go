package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the contact pipeline.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindSpam       ErrorKind = "spam"
	KindRateLimit  ErrorKind = "rate_limit"
	KindDelivery   ErrorKind = "delivery"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

// Error is returned by ContactService. Message is safe to show to users.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field messages for KindValidation.
	Fields map[string]string
	// Retryable is set on delivery failures the user may simply resubmit.
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
