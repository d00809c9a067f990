package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds surfaced by services. Handlers map them to HTTP statuses with
// errors.Is; anything that matches none of them is an internal error.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
)

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string {
	return e.message
}

func (e *kindError) Unwrap() error {
	return e.kind
}

func newKindError(kind error, fallback, format string, args ...interface{}) error {
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		message = fallback
	}
	return &kindError{kind: kind, message: message}
}

func newValidationError(format string, args ...interface{}) error {
	return newKindError(ErrValidation, "invalid input", format, args...)
}

func newNotFoundError(format string, args ...interface{}) error {
	return newKindError(ErrNotFound, "not found", format, args...)
}

func newForbiddenError(format string, args ...interface{}) error {
	return newKindError(ErrForbidden, "forbidden", format, args...)
}

func newConflictError(format string, args ...interface{}) error {
	return newKindError(ErrConflict, "conflict", format, args...)
}

func newUnauthorizedError(format string, args ...interface{}) error {
	return newKindError(ErrUnauthorized, "unauthorized", format, args...)
}

// IsValidationError reports whether the provided error indicates invalid user input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsKnown reports whether err carries one of the service error kinds, in which
// case its message is safe to show to clients.
func IsKnown(err error) bool {
	var ke *kindError
	return errors.As(err, &ke)
}

// notFoundOr turns a missing record into ErrNotFound with the given message and
// wraps any other failure.
func notFoundOr(err error, message, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newNotFoundError("%s", message)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqlState interface{ SQLState() string }
	if errors.As(err, &sqlState) {
		return sqlState.SQLState() == "23505"
	}

	// SQLite reports unique violations only through the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
