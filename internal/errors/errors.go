// Package errors defines the provisioner's error taxonomy.
package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation = "E100"
	CodeDatabase   = "E200"
	CodeRemoteCall = "E300"
	CodeState      = "E400"
)

type AppError struct {
	Code       string
	Message    string
	Severity   Severity
	StatusCode int
	cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string, cause error) *AppError {
	return &AppError{
		Code:     CodeValidation,
		Message:  msg,
		Severity: SeverityLow,
		cause:    cause,
	}
}

func NewDatabaseError(op string, cause error) *AppError {
	return &AppError{
		Code:     CodeDatabase,
		Message:  fmt.Sprintf("database error: %s", op),
		Severity: SeverityHigh,
		cause:    cause,
	}
}

// NewRemoteCallError covers network, authentication, SQL and permission failures
// of a call to the hosted project alike; they are not distinguished.
func NewRemoteCallError(op string, cause error) *AppError {
	return &AppError{
		Code:     CodeRemoteCall,
		Message:  fmt.Sprintf("remote call failed: %s", op),
		Severity: SeverityHigh,
		cause:    cause,
	}
}

// NewHTTPStatusError reports a non-2xx answer; body is truncated by the caller.
func NewHTTPStatusError(op string, status int, body string) *AppError {
	msg := fmt.Sprintf("remote call failed: %s: http %d", op, status)
	if body != "" {
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	return &AppError{
		Code:       CodeRemoteCall,
		Message:    msg,
		Severity:   SeverityHigh,
		StatusCode: status,
	}
}

func NewStateError(msg string) *AppError {
	return &AppError{
		Code:     CodeState,
		Message:  msg,
		Severity: SeverityMedium,
	}
}

// CodeOf returns the AppError code carried by err, or an empty string.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Code
	}

	return ""
}
