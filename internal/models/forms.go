// internal/models/forms.go
package models

// Answer length limits, enforced by the modal and again on submission.
const (
	MaxShortAnswerLength     = 100
	MaxParagraphAnswerLength = 4000
)

// FormField is one text input of an application form.
type FormField struct {
	ID        string
	Label     string
	Paragraph bool
}

// MaxLength is the longest answer the field accepts.
func (f FormField) MaxLength() int {
	if f.Paragraph {
		return MaxParagraphAnswerLength
	}
	return MaxShortAnswerLength
}

// Persisted reports whether the answer is stored on the application record.
func (f FormField) Persisted() bool {
	return f.ID == FieldPlateIdentifier || f.ID == FieldProfileHandle
}

// FormDefinition describes the modal shown for a form kind.
type FormDefinition struct {
	Kind    FormKind
	ModalID string
	Title   string
	Fields  []FormField
}

var (
	StandardForm = FormDefinition{
		Kind:    FormStandard,
		ModalID: "application_modal",
		Title:   "LNS Application",
		Fields: []FormField{
			{ID: "question1", Label: "Westbridge Number Plate"},
			{ID: "question2", Label: "Roblox Username"},
			{ID: "question3", Label: "Question 3", Paragraph: true},
			{ID: "question4", Label: "Question 4", Paragraph: true},
		},
	}

	FastTrackForm = FormDefinition{
		Kind:    FormFastTrack,
		ModalID: "fasttrack_modal",
		Title:   "Fast Track Application",
		Fields: []FormField{
			{ID: "question1", Label: "Westbridge Number Plate"},
			{ID: "question2", Label: "Roblox Username"},
			{ID: "question3", Label: "Why should you be fast tracked?", Paragraph: true},
		},
	}
)

// FormFor returns the definition for kind.
func FormFor(kind FormKind) (FormDefinition, bool) {
	switch kind {
	case FormStandard:
		return StandardForm, true
	case FormFastTrack:
		return FastTrackForm, true
	default:
		return FormDefinition{}, false
	}
}

// OrderedAnswers pairs answers with their field labels in form order.
// Fields without an answer are skipped.
func (d FormDefinition) OrderedAnswers(values map[string]string) []Answer {
	out := make([]Answer, 0, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := values[f.ID]
		if !ok {
			continue
		}
		out = append(out, Answer{FieldID: f.ID, Label: f.Label, Value: v})
	}
	return out
}
