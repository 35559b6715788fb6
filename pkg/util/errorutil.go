package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the client, the console and the CLI.
const (
	CodeValidation = "VALIDATION_FAILED"
	CodeAuth       = "UNAUTHORIZED"
	CodeBackend    = "BACKEND_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports missing or malformed input detected before any request is made.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewAuthError reports a missing token or a token the backend rejected.
func NewAuthError(message string) error {
	return NewDomainError(CodeAuth, message, http.StatusUnauthorized, nil)
}

// NewBackendError wraps a non-2xx response or a success:false envelope.
// The status is the upstream status; 502 is used when the upstream answered 2xx.
func NewBackendError(status int, message string, details map[string]any) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = "request failed"
	}
	httpStatus := status
	if httpStatus < 400 {
		httpStatus = http.StatusBadGateway
	}
	return &DomainError{
		Code:       CodeBackend,
		Message:    message,
		HTTPStatus: httpStatus,
		Details:    details,
	}
}

// NewNetworkError reports a transport failure where no response was received.
func NewNetworkError(err error) error {
	return &DomainError{
		Code:       CodeNetwork,
		Message:    "backend unreachable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       CodeNetwork,
			Message:    "request timed out",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return hasCode(err, CodeAuth) }

// IsBackend reports whether err is a normalized backend failure.
func IsBackend(err error) bool { return hasCode(err, CodeBackend) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return hasCode(err, CodeNetwork) }
