// Package errors provides standardized error handling for hardhound.
// It defines sentinel errors and utilities for error wrapping with context.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrToolMissing indicates a probe's required external tool is absent
	ErrToolMissing = stderrors.New("required tool missing")

	// ErrPermissionDenied indicates insufficient privilege to read or change a resource
	ErrPermissionDenied = stderrors.New("permission denied")

	// ErrParseFailure indicates an expected directive or pattern was absent
	// from a configuration source
	ErrParseFailure = stderrors.New("parse failure")

	// ErrRemediationFailed indicates a mutating action returned a non-success result
	ErrRemediationFailed = stderrors.New("remediation failed")

	// ErrFileOperation indicates a file read, write, or copy failed
	ErrFileOperation = stderrors.New("file operation failed")
)

// Wrap wraps an error with context message and preserves the underlying error chain.
// Use this to add context while maintaining error identity for stderrors.Is checks.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// New creates a new error with formatted message.
// Use this for new errors that don't wrap existing errors.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around stderrors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
