package sprocc

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := compiler.Compile(ctx, config)
//	if errors.Is(err, sprocc.ErrCompileFailed) {
//	    // At least one routine failed to compile
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates the source directory does not exist or
	// contains no routine sources.
	ErrSourceNotFound = errors.New("no routine sources found")

	// ErrApprovalDenied indicates the user denied approval for the
	// destructive rebuild workflow.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrCompileFailed indicates at least one routine failed to compile.
	ErrCompileFailed = errors.New("compilation failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication
	// method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported auth method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known
// errors, and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrCompileFailed):
		return ExitCompileFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	errStr := err.Error()

	// Cobra usage errors surface as plain errors; classify by message.
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"invalid argument",
		"required flag",
		"accepts ",
	}
	for _, pattern := range usagePatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	// Common connection error patterns.
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
