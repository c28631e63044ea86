// internal/models/notification.go
package models

import "time"

// DecisionOutcome is the audit record of one review transition and the
// result of each of its independent side effects.
type DecisionOutcome struct {
	EventID       string            `json:"eventId"`
	ApplicantID   string            `json:"applicantId"`
	ReviewerID    string            `json:"reviewerId"`
	Status        ApplicationStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	RoleGranted   bool              `json:"roleGranted"`
	ApplicantSent bool              `json:"applicantNotified"`
	TicketUpdated bool              `json:"ticketUpdated"`
	DecidedAt     time.Time         `json:"decidedAt"`
}
