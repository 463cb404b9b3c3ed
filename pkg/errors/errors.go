package custom_error

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("operation not allowed")
	ErrInvalidTransition = errors.New("invalid transition")
)

// GatewayError wraps a failed call to the upstream GraphQL service.
type GatewayError struct {
	Operation string
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v", e.Operation, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// VersionConflictError is returned when an update carried a stale version.
type VersionConflictError struct {
	Resource string
	ID       string
	Version  int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified by someone else (version %d is stale)", e.Resource, e.ID, e.Version)
}

type ValidationError struct {
	Message  string `json:"message"`
	Property string `json:"property"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Property, e.Message)
}

// PartialFailureError reports which steps of a multi-step operation completed
// before one of them failed.
type PartialFailureError struct {
	Operation   string
	Completed   []string
	Failed      string
	Compensated bool
	Err         error
}

func (e *PartialFailureError) Error() string {
	state := "not compensated"
	if e.Compensated {
		state = "compensated"
	}
	return fmt.Sprintf("%s failed at %s after [%s] (%s): %v",
		e.Operation, e.Failed, strings.Join(e.Completed, ", "), state, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
