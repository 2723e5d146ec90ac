package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the dashboard backend.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrNotConfigured indicates required configuration is missing.
// Raised before any network call is attempted.
type ErrNotConfigured struct {
	Service string
	Missing []string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s not configured: missing %s", e.Service, strings.Join(e.Missing, ", "))
}

// ErrUpstream indicates a non-2xx response from an external API.
// Fatal to the call that produced it; never retried.
type ErrUpstream struct {
	Service string
	Status  int
	Body    string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.Status, e.Body)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}
