// Package errors provides structured errors and exit codes for mkdist.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrConfig indicates invalid options or an unusable directory layout.
	ErrConfig = errors.New("configuration error")

	// ErrNotFound indicates a directory, file or binary was not found.
	ErrNotFound = errors.New("not found")

	// ErrToolchain indicates an external compiler could not be run.
	ErrToolchain = errors.New("toolchain error")

	// ErrTransform indicates a single file failed to transform.
	ErrTransform = errors.New("transform failed")

	// ErrDeclaration indicates a declaration could not be generated.
	ErrDeclaration = errors.New("declaration failed")
)

// DetailError captures structured error information.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path, optionally with line and column.
	Location string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	for k, v := range e.Context {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a configuration error with details.
func NewConfigError(message, location, hint string) error {
	return &DetailError{
		Type:     "invalid configuration",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrConfig,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// NewToolchainError creates an error for a failed external compiler run.
func NewToolchainError(message string, context map[string]string, cause error) error {
	return &DetailError{
		Type:    "toolchain failed",
		Message: message,
		Context: context,
		Cause:   fmt.Errorf("%w: %w", ErrToolchain, cause),
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}

// PositionError is a diagnostic tied to a location in a source file.
type PositionError struct {
	File    string
	Line    int
	Column  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	b.WriteString(": ")
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap classifies positional diagnostics as declaration failures.
func (e *PositionError) Unwrap() error {
	return ErrDeclaration
}
