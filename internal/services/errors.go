package services

import (
	"errors"

	"pocketlog/internal/repositories"
)

var (
	// ErrValidation marks bad or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrConflict marks a uniqueness or duplicate-state violation.
	ErrConflict = repositories.ErrConflict
	// ErrUnauthorized marks a missing, invalid or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstreamAuth marks a failed call to the identity provider.
	ErrUpstreamAuth = errors.New("identity provider request failed")
)

// tokenError is a token verification failure that is both its own kind and ErrUnauthorized.
type tokenError struct {
	msg string
}

func (e *tokenError) Error() string { return e.msg }

func (e *tokenError) Unwrap() error { return ErrUnauthorized }

var (
	ErrTokenExpired          error = &tokenError{msg: "token expired"}
	ErrTokenMalformed        error = &tokenError{msg: "token malformed"}
	ErrTokenSignatureInvalid error = &tokenError{msg: "token signature invalid"}
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
