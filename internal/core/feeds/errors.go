package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when no user is attached to the request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSources is returned by the fetcher when it is given nothing to fetch
	ErrNoSources = errors.New("no candidate sources")

	// ErrCacheClear is returned when a refresh cannot clear the previous generation
	ErrCacheClear = errors.New("failed to clear feed cache")

	// ErrContentUnavailable is returned when a refresh is refused because the
	// content store breaker is open; the existing cache is left untouched
	ErrContentUnavailable = errors.New("content store unavailable")
)

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
