package authsession

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned by [Controller.Login] when the
	// backend rejects the identifier/secret pair. Session state is left
	// untouched in that case.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned by collaborator calls when the backend
	// rejects the current credential after the fact (expired or revoked
	// token). The controller reacts with a silent local teardown; the
	// triggering call still observes this error.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRoleNotPermitted is returned when a self-service role change
	// targets a role outside the permitted subset. The restriction is a
	// UX convenience mirrored client-side; the server remains
	// authoritative.
	ErrRoleNotPermitted = errors.New("role change not permitted")

	// ErrStorageUnavailable marks a durable credential read or write
	// failure. It is recovered internally by falling back to memory-only
	// operation and is logged, never surfaced to callers.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
)

// FieldError is one field-level entry of a [ValidationError].
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level validation failures from
// registration or profile updates. It is surfaced verbatim to the caller
// and causes no local state change.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface. It lists each failing field with
// its message.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
