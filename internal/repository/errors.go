package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicateToken is returned by Create when the verification token is
// already bound to another message.
var ErrDuplicateToken = errors.New("verification token already in use")
