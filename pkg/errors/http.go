package custom_error

import (
	"context"
	"errors"
	"net/http"
)

// Status maps an error to the HTTP status and machine readable code handlers
// put in their JSON body.
func Status(err error) (int, string) {
	var (
		validationErr *ValidationError
		conflictErr   *VersionConflictError
		partialErr    *PartialFailureError
		gatewayErr    *GatewayError
		uniqueErr     *UniqueViolationError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "validation_error"
	case errors.As(err, &conflictErr):
		return http.StatusConflict, "version_conflict"
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.As(err, &uniqueErr):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &partialErr):
		return http.StatusBadGateway, "partial_failure"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway, "gateway_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
