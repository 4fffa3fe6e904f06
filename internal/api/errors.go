package api

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel domain errors. Handlers map these onto HTTP status codes;
// services wrap them with %w so errors.Is keeps working up the stack.
var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrAccountDisabled = errors.New("account is deactivated")
var ErrForbidden = errors.New("action forbidden")

// FieldError is a single validation violation bound to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violation found in a request payload.
// All fields are checked before the error is returned so the client sees
// the complete list in one round trip.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(msgs, ", "))
}

// Add records a violation for the given field.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldError{Field: field, Message: message})
}

// HasViolations reports whether any field failed validation.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}
