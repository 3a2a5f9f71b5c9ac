package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation failed")
	ErrUnableToObtainToken     = errors.New("unable to obtain access token")
	ErrInvalidUpstreamResponse = errors.New("invalid response from external API")
)

// ValidationError is returned before any network call when a request is
// missing required fields or carries malformed values.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MissingFields builds a ValidationError for the given names, or nil.
func MissingFields(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Invalid builds a ValidationError with a fixed message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}
