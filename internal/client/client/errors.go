package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated: no token is held, or the backend refused it (401/403).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNetworkFailure: the request never got an HTTP answer.
	ErrNetworkFailure = errors.New("network failure")
	// ErrServerRejected: any other non-2xx answer.
	ErrServerRejected = errors.New("server rejected request")
	// ErrValidationFailed: the payload was refused before dispatch.
	ErrValidationFailed = errors.New("validation failed")
	// ErrNotFound: the record is not in the local collection.
	ErrNotFound = errors.New("not found")
)

// ServerError is a non-2xx response. Field is set when the backend reported
// a per-field error.
type ServerError struct {
	Status int
	Reason string
	Field  string
}

func (e *ServerError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("server rejected request (%d): %s: %s", e.Status, e.Field, e.Reason)
	}
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Reason)
}

func (e *ServerError) Unwrap() error { return ErrServerRejected }

// ValidationError names the offending field of a refused payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

func ValidationFailed(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Reason extracts a short user-facing explanation from err.
func Reason(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		if se.Field != "" {
			return se.Field + ": " + se.Reason
		}
		return se.Reason
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "please log in"
	case errors.Is(err, ErrNetworkFailure):
		return "server unreachable"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
