package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned before any call when no API credential is set.
var ErrNotConfigured = errors.New("generation service not configured")

// APIError reports a failure returned by, or on the way to, the remote service.
// Status is 0 for transport failures.
type APIError struct {
	Operation Operation
	Status    int
	Message   string
	Type      string
	Err       error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Type != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Type)
	}
	if e.Status > 0 {
		return fmt.Sprintf("generation api error op=%s status=%d: %s", e.Operation, e.Status, msg)
	}
	return fmt.Sprintf("generation api error op=%s: %s", e.Operation, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusConflict, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// SchemaError reports a response that does not match the operation's contract.
type SchemaError struct {
	Operation Operation
	Reason    string
	Err       error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation schema error op=%s: %s: %v", e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("generation schema error op=%s: %s", e.Operation, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err is or wraps an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}
