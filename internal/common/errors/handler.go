// internal/common/errors/handler.go
package errors

import (
	"time"
)

// User-facing replies. Persistence and unexpected failures share one generic text.
const (
	ReplyGeneric         = "An error occurred while processing your request."
	ReplyValidation      = "Your submission is incomplete. Please fill in every field and try again."
	ReplyUnauthorized    = "You do not have permission to use this command."
	ReplyAlreadyApplied  = "You have already applied!"
	ReplyAlreadyReviewed = "This application has already been reviewed."
	ReplyNoRecord        = "No application data found."
)

// Handler turns handler errors into the ephemeral text shown to the invoking user.
type Handler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// ReplyFor logs err with its code and category and returns the reply text.
func (h *Handler) ReplyFor(err error) string {
	if err == nil {
		return ""
	}

	stdErr := h.normalizeError(err)
	h.logger.Error("Interaction failed", map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	switch stdErr.Code {
	case ErrCodeValidationFailed:
		return ReplyValidation
	case ErrCodeUnauthorized:
		return ReplyUnauthorized
	case ErrCodeDuplicateSubmission:
		return ReplyAlreadyApplied
	case ErrCodeAlreadyDecided:
		return ReplyAlreadyReviewed
	case ErrCodeRecordNotFound:
		return ReplyNoRecord
	default:
		return ReplyGeneric
	}
}

// normalizeError ensures we always have a StandardError
func (h *Handler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
