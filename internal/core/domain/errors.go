// Package domain defines the core domain models for relaychat.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "RC-SESS-4030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrOriginBanned indicates the connecting origin is inside its ban window.
	ErrOriginBanned = NewDomainError("RC-SESS-4030", "origin is banned")

	// ErrInvalidToken indicates a token submission did not match.
	ErrInvalidToken = NewDomainError("RC-SESS-4010", "invalid access token")

	// ErrSessionNotFound indicates an event referenced an unknown session.
	ErrSessionNotFound = NewDomainError("RC-SESS-4040", "session not found")
)

// ============================================================================
// Server Errors (SRV)
// ============================================================================

var (
	// ErrTokenGeneration indicates the startup token could not be generated.
	ErrTokenGeneration = NewDomainError("RC-SRV-5001", "token generation failed")

	// ErrBindFailed indicates the listening port could not be bound.
	ErrBindFailed = NewDomainError("RC-SRV-5002", "listener bind failed")

	// ErrServerClosed indicates an operation raced with server shutdown.
	ErrServerClosed = NewDomainError("RC-SRV-5003", "server closed")
)
