// Package errors provides standardized error handling for the HTTP API.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeVerifyOTP          ErrorCode = "VERIFY_OTP"
	ErrCodeOTPExpired         ErrorCode = "OTP_EXPIRED"
	ErrCodeOTPMismatch        ErrorCode = "OTP_MISMATCH"

	ErrCodeStoreFailed            ErrorCode = "STORE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// APIError represents a structured application error with an HTTP mapping.
type APIError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Status    int       `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a 400 error for malformed or invalid input.
func NewValidationError(details string) *APIError {
	return &APIError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a 401 error for missing or invalid credentials.
func NewUnauthorizedError(details string) *APIError {
	return &APIError{
		Code:      ErrCodeUnauthorized,
		Message:   "Authentication required",
		Details:   details,
		Status:    http.StatusUnauthorized,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a 401 error for a failed login attempt.
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid email or password",
		Status:    http.StatusUnauthorized,
		Timestamp: time.Now().UTC(),
	}
}

// NewVerifyOTPError creates a 403 error telling the client to complete
// OTP verification before logging in.
func NewVerifyOTPError(email string) *APIError {
	return &APIError{
		Code:      ErrCodeVerifyOTP,
		Message:   "Account not verified, complete OTP verification",
		Details:   fmt.Sprintf("email: %s", email),
		Status:    http.StatusForbidden,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates a 403 error for insufficient permissions.
func NewForbiddenError(details string) *APIError {
	return &APIError{
		Code:      ErrCodeForbidden,
		Message:   "Insufficient permissions",
		Details:   details,
		Status:    http.StatusForbidden,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a 404 error for a missing or invisible resource.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Status:    http.StatusNotFound,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a 409 error for duplicate resources.
func NewConflictError(details string) *APIError {
	return &APIError{
		Code:      ErrCodeConflict,
		Message:   "Resource already exists",
		Details:   details,
		Status:    http.StatusConflict,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPExpiredError creates a 400 error for a missing or expired OTP.
func NewOTPExpiredError() *APIError {
	return &APIError{
		Code:      ErrCodeOTPExpired,
		Message:   "OTP has expired or was never issued",
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewOTPMismatchError creates a 400 error for a wrong OTP value.
func NewOTPMismatchError() *APIError {
	return &APIError{
		Code:      ErrCodeOTPMismatch,
		Message:   "Invalid OTP",
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreError creates a 500 error wrapping a storage failure.
func NewStoreError(err error) *APIError {
	return &APIError{
		Code:      ErrCodeStoreFailed,
		Message:   "Storage operation failed",
		Details:   err.Error(),
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}
