// Package errors provides standardized error handling for the claims gateway.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePrimaryBackendFailed    ErrorCode = "PRIMARY_BACKEND_FAILED"
	ErrCodeSecondaryBackendFailed  ErrorCode = "SECONDARY_BACKEND_FAILED"
	ErrCodeFallbackExhausted       ErrorCode = "FALLBACK_EXHAUSTED"
	ErrCodeClaimNotFound           ErrorCode = "CLAIM_NOT_FOUND"
	ErrCodeClaimValidationFailed   ErrorCode = "CLAIM_VALIDATION_FAILED"
	ErrCodeRemoteValidationFailed  ErrorCode = "REMOTE_VALIDATION_FAILED"
	ErrCodeDatabaseConnectionFault ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed    ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeChatResolutionFailed    ErrorCode = "CHAT_RESOLUTION_FAILED"
	ErrCodeSessionStoreFailed      ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeSearchQueryFailed       ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed  ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewPrimaryBackendFailedError wraps a primary table-store failure. Retryable
// because the fallback sequence routes around it.
func NewPrimaryBackendFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePrimaryBackendFailed,
		Message:   "Primary backend operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSecondaryBackendFailedError wraps a REST fallback failure.
func NewSecondaryBackendFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSecondaryBackendFailed,
		Message:   "Secondary backend operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", op, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewFallbackExhaustedError is surfaced when every backend attempt of a single
// logical operation has failed. The aggregated detail includes each attempt.
func NewFallbackExhaustedError(op string, attempts []error) *StandardError {
	parts := make([]string, 0, len(attempts))
	for i, err := range attempts {
		parts = append(parts, fmt.Sprintf("attempt %d: %s", i+1, err.Error()))
	}
	return &StandardError{
		Code:      ErrCodeFallbackExhausted,
		Message:   fmt.Sprintf("All backend attempts failed for %s", op),
		Details:   strings.Join(parts, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     errors.Join(attempts...),
	}
}

// NewClaimNotFoundError is a terminal not-found: both backends have been asked.
func NewClaimNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClaimNotFound,
		Message:   "Claim not found",
		Details:   fmt.Sprintf("claimId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClaimValidationFailedError covers local (client-side) validation failures.
// These never reach a backend.
func NewClaimValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClaimValidationFailed,
		Message:   "Claim data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteValidationFailedError carries the per-field messages returned by the
// secondary backend, joined into one human-readable string.
func NewRemoteValidationFailedError(fieldErrors map[string][]string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteValidationFailed,
		Message:   "Backend rejected the claim payload",
		Details:   JoinFieldErrors(fieldErrors),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFault,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewChatResolutionFailedError wraps a failed chat reply resolution.
func NewChatResolutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatResolutionFailed,
		Message:   "Chat response resolution failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSessionStoreFailedError wraps a chat session persistence failure.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Chat session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSearchQueryFailedError wraps an assistant index search failure.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Assistant search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsNotFound reports whether err is (or wraps) a claim-not-found error.
func IsNotFound(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == ErrCodeClaimNotFound
	}
	return false
}

// IsValidation reports whether err is a local or remote validation failure.
func IsValidation(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == ErrCodeClaimValidationFailed || stdErr.Code == ErrCodeRemoteValidationFailed
	}
	return false
}

// CodeOf extracts the ErrorCode, or empty when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// JoinFieldErrors flattens a field -> messages map into one deterministic,
// human-readable string ("age: must be >= 0; ic_number: too short").
func JoinFieldErrors(fieldErrors map[string][]string) string {
	if len(fieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fieldErrors[field], ", ")))
	}
	return strings.Join(parts, "; ")
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "FALLBACK"):
		return "BACKEND"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CHAT") || strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "SEARCH"):
		return "ASSISTANT"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
