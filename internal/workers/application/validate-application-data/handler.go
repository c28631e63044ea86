// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/validation"
	"application-intake/internal/models"
)

const (
	TaskType = "validate-application-data"
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
	ErrUnknownFormKind             = errors.New("UNKNOWN_FORM_KIND")
)

// nonBlank rejects values made only of whitespace.
const nonBlank = `\S`

type Handler struct {
	config  *Config
	logger  logger.Logger
	schemas map[models.FormKind]validation.JSONSchema
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	h := &Handler{
		config:  config,
		logger:  log.WithFields(map[string]interface{}{"worker": TaskType}),
		schemas: make(map[models.FormKind]validation.JSONSchema),
	}
	for _, form := range []models.FormDefinition{models.StandardForm, models.FastTrackForm} {
		h.schemas[form.Kind] = h.buildSchema(form)
	}
	return h
}

// buildSchema requires every field of the form. The plate and handle fields
// must also be non-blank since they are persisted.
func (h *Handler) buildSchema(form models.FormDefinition) validation.JSONSchema {
	schema := validation.JSONSchema{
		Type:       "object",
		Properties: make(map[string]validation.Property, len(form.Fields)),
		Required:   make([]string, 0, len(form.Fields)),
	}

	for _, f := range form.Fields {
		prop := validation.Property{Type: "string", Description: f.Label}

		limit := h.config.MaxShortLength
		if f.Paragraph {
			limit = h.config.MaxParagraphLength
		}
		if limit > 0 {
			prop.MaxLength = intPtr(limit)
		}

		if f.Persisted() {
			prop.MinLength = intPtr(1)
			prop.Pattern = strPtr(nonBlank)
		}

		schema.Properties[f.ID] = prop
		schema.Required = append(schema.Required, f.ID)
	}
	return schema
}

// Execute returns a VALIDATION_FAILED StandardError wrapping
// ErrApplicationValidationFailed when the answers do not satisfy the form.
// The output is returned alongside so callers can log individual fields.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input is required", ErrApplicationValidationFailed)
	}

	schema, ok := h.schemas[input.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormKind, input.Kind)
	}

	document := make(map[string]interface{}, len(input.Answers))
	for k, v := range input.Answers {
		document[k] = v
	}

	result, err := validation.Validate(schema, document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApplicationValidationFailed, err)
	}

	output := &Output{
		IsValid:          result.Valid,
		ValidationErrors: make([]ValidationError, 0, len(result.Errors)),
	}
	for _, e := range result.Errors {
		output.ValidationErrors = append(output.ValidationErrors, ValidationError{
			Field:   strings.TrimPrefix(e.Field, "(root)."),
			Code:    e.Code,
			Message: e.Message,
		})
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"formKind":   string(input.Kind),
		"isValid":    output.IsValid,
		"errorCount": len(output.ValidationErrors),
	})

	if !output.IsValid {
		details := strings.Join(result.GetErrorMessages(), "; ")
		return output, &wrappedValidationError{
			std:   apperrors.NewValidationFailedError(details),
			cause: ErrApplicationValidationFailed,
		}
	}

	return output, nil
}

// wrappedValidationError lets callers match both the package sentinel and the
// StandardError with errors.Is / errors.As.
type wrappedValidationError struct {
	std   *apperrors.StandardError
	cause error
}

func (e *wrappedValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.cause, e.std.Details)
}

func (e *wrappedValidationError) Unwrap() []error {
	return []error{e.std, e.cause}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
