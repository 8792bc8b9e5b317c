package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the service layer. The HTTP error middleware is the
// only place these are translated into status codes.
var (
	// ErrNotFound: the resource does not exist. Existence is reported before
	// authorization, so a missing note is NotFound even for strangers.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized: the caller is authenticated but not allowed to perform
	// the operation on this resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials: login or token refresh failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries the names of the request fields that failed
// validation.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed on: %s", strings.Join(e.Fields, ", "))
}
