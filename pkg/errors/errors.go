// Package errors provides structured error types for Pangolin.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the compiler, the runtime API and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending file
//
// # Error Codes
//
// Compile errors are fatal to a run: MALFORMED_SOURCE, MALFORMED_NAME,
// DUPLICATE_ICON and TEMPLATE abort the pipeline before any output is written.
// ARCHIVAL_WRITE and MINIFY_FAILED are recovered locally by the caller.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedName, "%s: empty icon id", name)
//	if errors.Is(err, errors.ErrCodeMalformedName) {
//	    // Handle naming error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeArchivalWrite, origErr, "copy %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Compile errors
	ErrCodeMalformedSource Code = "MALFORMED_SOURCE"
	ErrCodeMalformedName   Code = "MALFORMED_NAME"
	ErrCodeDuplicateIcon   Code = "DUPLICATE_ICON"
	ErrCodeTemplate        Code = "TEMPLATE"
	ErrCodeArchivalWrite   Code = "ARCHIVAL_WRITE"

	// Runtime errors
	ErrCodeIconNotFound Code = "ICON_NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeMinifyFailed Code = "MINIFY_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err must abort a compile run.
// Archival and minification failures are recovered by their callers;
// every other coded or uncoded error is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeArchivalWrite, ErrCodeMinifyFailed:
		return false
	}
	return true
}
