// internal/models/application.go
package models

import "time"

// ApplicationStatus is the persisted review state of an application.
type ApplicationStatus string

const (
	StatusPendingReview ApplicationStatus = "pending_review"
	StatusApproved      ApplicationStatus = "approved"
	StatusDeclined      ApplicationStatus = "declined"
)

// IsTerminal reports whether no further review transition is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// FormKind identifies which application form a user opened.
type FormKind string

const (
	FormStandard  FormKind = "standard"
	FormFastTrack FormKind = "fast_track"
)

func (k FormKind) IsValid() bool {
	return k == FormStandard || k == FormFastTrack
}

// Field ids shared by every form. Only the first two are persisted.
const (
	FieldPlateIdentifier = "question1"
	FieldProfileHandle   = "question2"
)

// ApplicationRecord is the canonical stored application, one per user.
type ApplicationRecord struct {
	UserID          string            `json:"userId"`
	PlateIdentifier string            `json:"plateIdentifier"`
	ProfileHandle   string            `json:"profileHandle"`
	FormKind        FormKind          `json:"formKind"`
	Status          ApplicationStatus `json:"status"`
	SubmittedAt     time.Time         `json:"submittedAt"`
	DecidedAt       *time.Time        `json:"decidedAt,omitempty"`
	DecidedBy       string            `json:"decidedBy,omitempty"`
	DeclineReason   string            `json:"declineReason,omitempty"`
}

// Answer is one collected form field in display order.
type Answer struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}
