// Package errors provides the error taxonomy of the conversation core.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrSimulator       = errors.New("simulator failed")
	ErrResponsePending = errors.New("a response is already pending")
	ErrStaleCompletion = errors.New("reply discarded: conversation no longer active")
)

// ValidationError is returned when input violates a model invariant, such as
// a message with neither text nor attachments. No state is mutated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError is returned when an operation names an entity that is absent.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "entity"
	}
	return fmt.Sprintf("%s not found: %s", kind, e.ID)
}

// Is allows comparison with sentinel errors
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// SimulatorError is produced by a responder that could not build a reply.
// The built-in simulator only returns it when a configured template fails to
// execute.
type SimulatorError struct {
	Message string
	Cause   error
}

func (e *SimulatorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("simulator failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("simulator failed: %s", e.Message)
}

// Unwrap returns the underlying cause
func (e *SimulatorError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *SimulatorError) Is(target error) bool {
	if target == ErrSimulator {
		return true
	}
	_, ok := target.(*SimulatorError)
	return ok
}

// NewSimulatorError creates a new SimulatorError
func NewSimulatorError(message string, cause error) *SimulatorError {
	return &SimulatorError{Message: message, Cause: cause}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError reports whether err is or wraps a NotFoundError
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSimulatorError reports whether err is or wraps a SimulatorError
func IsSimulatorError(err error) bool {
	return errors.Is(err, ErrSimulator)
}
