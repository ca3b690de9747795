package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/Renal37/fuel-orders/internal/backend"
	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/middlewares"
	"github.com/Renal37/fuel-orders/internal/services"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string                `json:"message"`
	Fields  []services.FieldError `json:"fields,omitempty"`
}

// writeError maps a service error to a status code and a message the user can read.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Log.Debug("request cancelled by client", zap.String("uri", r.RequestURI))
		return
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		middlewares.EncodeJSONResponse(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Validation failed",
			Fields:  validationErr.Fields,
		})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}

		middlewares.EncodeJSONResponse(w, status, errorResponse{Message: apiErr.Message})
		return
	}

	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("uri", r.RequestURI), zap.Error(err))
	}

	middlewares.EncodeJSONResponse(w, status, errorResponse{Message: message})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, backend.ErrNetworkUnreachable):
		return http.StatusServiceUnavailable, backend.UnreachableMessage
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Session is missing or expired"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, services.ErrNoForwardTransition):
		return http.StatusConflict, "Order status cannot be advanced"
	case errors.Is(err, services.ErrDuplicateSubmission):
		return http.StatusConflict, "The same request is already in progress"
	case errors.Is(err, services.ErrAdvanceCancelled):
		return http.StatusPreconditionRequired, "Status change was not confirmed"
	case errors.Is(err, services.ErrAuditDisabled):
		return http.StatusNotFound, "Audit trail is disabled"
	case errors.Is(err, services.ErrMalformedToken):
		return http.StatusBadGateway, "Login returned an unreadable token"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
