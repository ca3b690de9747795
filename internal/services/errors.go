package services

import (
	"errors"
	"strings"
	"time"

	"github.com/Renal37/fuel-orders/internal/models"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrUnauthorized = errors.New("session is missing or expired")
	ErrForbidden    = errors.New("session lacks the required role")

	ErrNoForwardTransition = errors.New("order status has no forward transition")
	ErrAdvanceCancelled    = errors.New("status change was not confirmed")
	ErrDuplicateSubmission = errors.New("the same request is already in progress")

	ErrAuditDisabled = errors.New("audit trail is disabled")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed field of a rejected input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}

	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// errOrNil keeps a nil *ValidationError from becoming a non-nil error.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RequireSession checks that session is valid at now and holds one of roles.
// With no roles any valid session passes.
func RequireSession(session *models.Session, now time.Time, roles ...models.Role) error {
	if !session.IsValid(now) {
		return ErrUnauthorized
	}

	if len(roles) > 0 && !session.HasAnyRole(roles...) {
		return ErrForbidden
	}

	return nil
}
