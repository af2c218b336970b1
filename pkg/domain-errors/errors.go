// Package domainerrors carries typed domain failures across layer
// boundaries. Services return these so callers and transports can branch on
// the code without string matching.
//
// For infrastructure facts (not found, expired) use pkg/platform/sentinel;
// this package is for rule violations the caller can act on.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeInvalidInput marks malformed or missing caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks input that parses but fails a domain rule,
	// rejected before any cryptographic operation.
	CodeValidation Code = "validation_failed"
	// CodeIntegrity marks tamper evidence: an authentication tag or
	// checksum mismatch. Fatal to the current operation.
	CodeIntegrity Code = "integrity_violation"
	// CodeUnauthorized marks insufficient role, consent, or clearance.
	CodeUnauthorized Code = "unauthorized"
	// CodePolicyViolation marks a non-fatal policy breach that is logged
	// and surfaced in compliance reporting without blocking the operation.
	CodePolicyViolation Code = "policy_violation"
	// CodeInvariantViolation marks an illegal state transition.
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal"
)

// Error is a domain failure with a machine-readable code and, where the
// failure is an authorization denial, the specific rejection reason.
type Error struct {
	Code    Code
	Message string
	// Reason carries the ordered rejection reason for authorization
	// failures so audit entries and callers see the same text.
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithReason attaches a rejection reason to an authorization error.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

// Wrap creates a domain error that preserves the underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) is a domain error
// with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ReasonOf returns the rejection reason attached to err, if any.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
