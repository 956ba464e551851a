// Package errors provides structured error types for versionsync.
//
// Every layer (providers, registry client, pipeline, config loader) reports
// failures as an [*Error] carrying a [Code]. The pipeline classifies a
// service's outcome purely from that code, so providers never need to know
// about result shapes and the pipeline never inspects HTTP status codes.
//
// # Error Codes
//
//   - CONFIGURATION: malformed config or a missing required credential; fatal before any network call
//   - NOT_FOUND: no release, tag or manifest
//   - NO_MATCH: the version filter or constraint rejected the release tag
//   - RATE_LIMITED: the upstream throttled the caller; never retried within a run
//   - TRANSIENT: network failure or 5xx; eligible for bounded retry
//   - UNAUTHORIZED / FORBIDDEN: credentials rejected
//   - MALFORMED: unexpected response shape
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "service %q: repo is required", name)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // abort the run
//	}
//
//	err := errors.Wrap(errors.ErrCodeTransient, origErr, "GET %s", url)
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the resolution pipeline.
const (
	ErrCodeConfiguration Code = "CONFIGURATION"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNoMatch  Code = "NO_MATCH"

	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeTransient   Code = "TRANSIENT"

	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	ErrCodeMalformed Code = "MALFORMED"
	ErrCodeInternal  Code = "INTERNAL_ERROR"
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
// The outermost *Error in the chain decides; a [*RateLimitedError] anywhere
// in the chain counts as [ErrCodeRateLimited].
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return ErrCodeRateLimited
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Error()
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter time.Duration // Wait hint reported by the upstream, 0 if unknown
	Message    string        // Which upstream throttled, e.g. "GitHub API"
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	prefix := "rate limited"
	if e.Message != "" {
		prefix = "rate limited by " + e.Message
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: retry after %s", prefix, e.RetryAfter)
	}
	return prefix
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// RetryAfter returns the retry hint of a rate-limited error chain, or 0.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
