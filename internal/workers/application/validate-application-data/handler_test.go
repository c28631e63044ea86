// internal/workers/application/validate-application-data/handler_test.go
package validateapplicationdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), &testLogger{t: t})
}

func standardAnswers() map[string]string {
	return map[string]string{
		"question1": "LNS 001",
		"question2": "builderman",
		"question3": "I have read the handbook.",
		"question4": "Weekday evenings.",
	}
}

func fieldsWithErrors(out *Output) []string {
	fields := make([]string, 0, len(out.ValidationErrors))
	for _, e := range out.ValidationErrors {
		fields = append(fields, e.Field)
	}
	return fields
}

// ==========================
// Execute
// ==========================

func TestExecute_ValidStandard(t *testing.T) {
	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: standardAnswers(),
	})

	require.NoError(t, err)
	assert.True(t, out.IsValid)
	assert.Empty(t, out.ValidationErrors)
}

func TestExecute_ValidFastTrack(t *testing.T) {
	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind: models.FormFastTrack,
		Answers: map[string]string{
			"question1": "LNS 002",
			"question2": "partner_user",
			"question3": "Partnered company staff.",
		},
	})

	require.NoError(t, err)
	assert.True(t, out.IsValid)
}

func TestExecute_MissingPlate(t *testing.T) {
	answers := standardAnswers()
	delete(answers, "question1")

	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrApplicationValidationFailed))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)

	require.NotNil(t, out)
	assert.False(t, out.IsValid)
	assert.Contains(t, fieldsWithErrors(out), "question1")
}

func TestExecute_BlankHandle(t *testing.T) {
	answers := standardAnswers()
	answers["question2"] = "   "

	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	require.Error(t, err)
	assert.Equal(t, []string{"question2"}, fieldsWithErrors(out))
}

func TestExecute_EmptyParagraphAllowed(t *testing.T) {
	answers := standardAnswers()
	answers["question3"] = ""

	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	require.NoError(t, err)
	assert.True(t, out.IsValid)
}

func TestExecute_MissingParagraphRejected(t *testing.T) {
	answers := standardAnswers()
	delete(answers, "question4")

	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	require.Error(t, err)
	assert.Contains(t, fieldsWithErrors(out), "question4")
}

func TestExecute_TooLong(t *testing.T) {
	answers := standardAnswers()
	answers["question1"] = strings.Repeat("x", 101)

	out, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	require.Error(t, err)
	assert.Contains(t, fieldsWithErrors(out), "question1")
}

func TestExecute_UnknownKind(t *testing.T) {
	_, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    "other",
		Answers: standardAnswers(),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormKind))
}

func TestExecute_NilInput(t *testing.T) {
	_, err := newTestHandler(t).Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrApplicationValidationFailed))
}

func TestErrorsHandler_RepliesValidationText(t *testing.T) {
	answers := standardAnswers()
	delete(answers, "question2")

	_, err := newTestHandler(t).Execute(context.Background(), &Input{
		Kind:    models.FormStandard,
		Answers: answers,
	})

	assert.Equal(t, apperrors.ReplyValidation, apperrors.NewHandler(&testLogger{t: t}).ReplyFor(err))
}
