package services

import (
	"errors"
	"fmt"
)

var (
	ErrOperationPending = errors.New("operation already in progress")
	ErrValidation       = errors.New("validation failed")
	ErrTableNotFound    = errors.New("table not found in current view")
	ErrNoSelection      = errors.New("no table selected")
	ErrUnknownFloor     = errors.New("unknown floor")
	ErrUnknownField     = errors.New("unknown form field")
	ErrInstanceNotFound = errors.New("screen instance not found")
)

// APIError is a non-2xx answer from the remote table API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
