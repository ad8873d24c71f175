package domain

import (
	"errors"
	"fmt"
)

// Engine error kinds. Every engine failure wraps exactly one of these (role and
// ownership failures on lifecycle commands wrap both ErrInvalidTransition and
// ErrUnauthorized).
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrConflict          = errors.New("conflict")
)

const (
	KindNotFound          = "not_found"
	KindUnauthorized      = "unauthorized"
	KindInvalidTransition = "invalid_transition"
	KindCapacityExceeded  = "capacity_exceeded"
	KindConflict          = "conflict"
	KindInternal          = "internal"
)

// KindOf maps an error to its stable code. Unauthorized wins over
// InvalidTransition so that callers can tell a guard on the actor apart from a
// guard on the state.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func InvalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Forbidden is returned when a lifecycle command is issued by an actor lacking
// the required role or ownership.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidTransition, ErrUnauthorized, fmt.Sprintf(format, args...))
}

func CapacityExceeded(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
