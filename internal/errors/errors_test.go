package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("message", "text or attachments required")

	expected := "validation failed on message: text or attachments required"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !err.Is(ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}

	if !err.Is(NewValidationError("", "other")) {
		t.Error("Expected error to be validation error type")
	}

	if err.Is(NewNotFoundError("conversation", "1")) {
		t.Error("Expected error not to match different type")
	}
}

func TestValidationError_NoField(t *testing.T) {
	err := NewValidationError("", "empty")

	expected := "validation failed: empty"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("conversation", "42")

	expected := "conversation not found: 42"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !err.Is(ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if err.Is(ErrValidation) {
		t.Error("NotFoundError should not match ErrValidation")
	}
}

func TestNotFoundError_DefaultKind(t *testing.T) {
	err := &NotFoundError{ID: "x"}
	if err.Error() != "entity not found: x" {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestSimulatorError(t *testing.T) {
	cause := errors.New("template: boom")
	err := NewSimulatorError("render reply", cause)

	expected := "simulator failed: render reply: template: boom"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("SimulatorError should unwrap to its cause")
	}

	if !err.Is(ErrSimulator) {
		t.Error("SimulatorError should match ErrSimulator")
	}

	bare := NewSimulatorError("offline", nil)
	if bare.Error() != "simulator failed: offline" {
		t.Errorf("Error() = %s", bare.Error())
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		simulator  bool
	}{
		{"validation", NewValidationError("f", "m"), true, false, false},
		{"wrapped validation", fmt.Errorf("send: %w", NewValidationError("f", "m")), true, false, false},
		{"not found", NewNotFoundError("conversation", "1"), false, true, false},
		{"wrapped not found", fmt.Errorf("select: %w", NewNotFoundError("conversation", "1")), false, true, false},
		{"simulator", NewSimulatorError("m", nil), false, false, true},
		{"pending", ErrResponsePending, false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.validation)
			}
			if got := IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.notFound)
			}
			if got := IsSimulatorError(tt.err); got != tt.simulator {
				t.Errorf("IsSimulatorError() = %v, want %v", got, tt.simulator)
			}
		})
	}
}
