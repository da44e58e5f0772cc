package service

import (
	"errors"
	"strings"
)

// Service errors.
var (
	// ErrAccessDenied covers both records outside the principal's scope and
	// records that do not exist. The two are indistinguishable to callers.
	ErrAccessDenied = errors.New("access denied")
	// ErrDestroyFailed hides the cause of a failed delete.
	ErrDestroyFailed = errors.New("company could not be destroyed")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNoActiveSession    = errors.New("user has no active session")
)

// ValidationError carries human-readable messages for a rejected record.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// validationErrors collects messages in the order they are found.
type validationErrors []string

func (v *validationErrors) add(msg string) {
	*v = append(*v, msg)
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Messages: v}
}
