package console

import (
	"context"
	"errors"
	"strings"

	"github.com/Renal37/fuel-orders/internal/backend"
	"github.com/Renal37/fuel-orders/internal/services"
)

// Describe turns an error into the message shown to the user.
func Describe(err error) string {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		parts := make([]string, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			parts = append(parts, f.Field+" "+f.Message)
		}
		return "Invalid input: " + strings.Join(parts, "; ")
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	switch {
	case errors.Is(err, backend.ErrNetworkUnreachable):
		return backend.UnreachableMessage
	case errors.Is(err, services.ErrUnauthorized):
		return "You are not logged in or your session expired. Run `fuelctl login`."
	case errors.Is(err, services.ErrForbidden):
		return "Your account is not allowed to do this."
	case errors.Is(err, services.ErrNoForwardTransition):
		return "This order cannot be advanced."
	case errors.Is(err, services.ErrDuplicateSubmission):
		return "The same request is already in progress."
	case errors.Is(err, context.Canceled):
		return "Interrupted."
	default:
		return err.Error()
	}
}
