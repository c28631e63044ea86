// Package errors provides standardized error handling for the intake workflow.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePersistenceFailed      ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeDuplicateSubmission    ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeAlreadyDecided         ErrorCode = "ALREADY_DECIDED"
	ErrCodeRecordNotFound         ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEnrichmentFailed       ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewPersistenceFailedError wraps a store failure. The operation is aborted.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persistence operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, errString(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable submission validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submission validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError is returned when the actor lacks the required capability.
func NewUnauthorizedError(permission string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Missing required permission",
		Details:   fmt.Sprintf("permission: %s", permission),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDuplicateSubmissionError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSubmission,
		Message:   "User has already applied",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAlreadyDecidedError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyDecided,
		Message:   "Application has already been reviewed",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRecordNotFoundError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Application record not found",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError is logged, never surfaced to a user.
func NewNotificationSendFailedError(target string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("target: %s, error: %s", target, errString(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailedError is logged, then degraded to a missing avatar.
func NewEnrichmentFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   "Profile lookup failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, errString(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError when one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "RECORD"):
		return "DATABASE"
	case strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "DUPLICATE"):
		return "AUTHORIZATION"
	case strings.Contains(codeStr, "DECIDED"):
		return "REVIEW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "ENRICHMENT"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
