package sentiment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrInitialization = errors.New("backend initialization failed")
	ErrInference      = errors.New("inference failed")
)

type ValidationKind string

const (
	EmptyInput        ValidationKind = "EmptyInput"
	WhitespaceOnly    ValidationKind = "WhitespaceOnly"
	TooLong           ValidationKind = "TooLong"
	TooManyWords      ValidationKind = "TooManyWords"
	TooManyLines      ValidationKind = "TooManyLines"
	SuspiciousContent ValidationKind = "SuspiciousContent"
)

// ValidationError is an expected, per-item failure. Callers processing many
// texts skip the item and continue.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	// ElapsedMS is set when the error was produced inside Predict.
	ElapsedMS float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

type InitializationError struct {
	ModelID string
	Cause   error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("pipeline initialization failed for %q: %v", e.ModelID, e.Cause)
}

func (e *InitializationError) Unwrap() error {
	return e.Cause
}

func (e *InitializationError) Is(target error) bool {
	return target == ErrInitialization
}

type InferenceKind string

const (
	InputEmpty     InferenceKind = "InputEmpty"
	InputTooLong   InferenceKind = "InputTooLong"
	BackendFailure InferenceKind = "BackendFailure"
	NoScores       InferenceKind = "NoScores"
)

type InferenceError struct {
	Kind      InferenceKind
	ElapsedMS float64
	Cause     error
}

func (e *InferenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s after %.2fms: %v", e.Kind, e.ElapsedMS, e.Cause)
	}
	return fmt.Sprintf("%s after %.2fms", e.Kind, e.ElapsedMS)
}

func (e *InferenceError) Unwrap() error {
	return e.Cause
}

func (e *InferenceError) Is(target error) bool {
	return target == ErrInference
}

// ErrorKind returns the taxonomy name of err, or "" for errors outside it.
func ErrorKind(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return string(vErr.Kind)
	}
	var iErr *InferenceError
	if errors.As(err, &iErr) {
		return string(iErr.Kind)
	}
	if errors.Is(err, ErrInitialization) {
		return "InitializationError"
	}
	return ""
}
