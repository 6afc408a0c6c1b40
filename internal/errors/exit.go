package errors

import "errors"

// Exit codes for the mkdist binary.
const (
	// ExitSuccess indicates the build completed without file errors.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error or per-file build errors.
	ExitGeneralError = 1

	// ExitConfigError indicates invalid options or directory layout.
	ExitConfigError = 2

	// ExitToolchainError indicates a required external compiler failed.
	ExitToolchainError = 3

	// ExitNotFound indicates the source directory or a named file was missing.
	ExitNotFound = 5
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Err is the underlying error.
	Err error

	// Printed reports whether the error was already shown to the user.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFromError determines the exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrToolchain):
		return ExitToolchainError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
