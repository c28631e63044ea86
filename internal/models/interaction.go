// internal/models/interaction.go
package models

// Intent names the five classified inbound event shapes.
type Intent string

const (
	IntentCommand        Intent = "command"
	IntentFormOpen       Intent = "form_open"
	IntentFormSubmission Intent = "form_submission"
	IntentReviewDecision Intent = "review_decision"
	IntentAdminMessage   Intent = "admin_message"
)

// InteractionRef identifies the platform interaction a handler must answer.
type InteractionRef struct {
	ID        string
	AppID     string
	Token     string
	GuildID   string
	ChannelID string
	MessageID string
}

// Actor is the platform user behind an event.
type Actor struct {
	UserID      string
	Username    string
	Permissions int64
}

// Has reports whether every bit of perm is granted.
func (a Actor) Has(perm int64) bool {
	return perm != 0 && a.Permissions&perm == perm
}

// Event is the typed union produced by the router. Exactly one of the
// concrete types below implements it per inbound event.
type Event interface {
	Intent() Intent
}

// CommandName enumerates the slash-style commands.
type CommandName string

const (
	CommandInfo   CommandName = "info"
	CommandUnlink CommandName = "unlink"
)

type CommandInvocation struct {
	Interaction    InteractionRef
	Actor          Actor
	Name           CommandName
	TargetUserID   string
	TargetUsername string
}

// Target returns the user the command acts on, defaulting to the caller.
func (c CommandInvocation) Target() (userID, username string) {
	if c.TargetUserID == "" || c.TargetUserID == c.Actor.UserID {
		return c.Actor.UserID, c.Actor.Username
	}
	return c.TargetUserID, c.TargetUsername
}

func (CommandInvocation) Intent() Intent { return IntentCommand }

type FormOpenRequest struct {
	Interaction InteractionRef
	Actor       Actor
	Kind        FormKind
}

func (FormOpenRequest) Intent() Intent { return IntentFormOpen }

type FormSubmission struct {
	Interaction InteractionRef
	Actor       Actor
	Kind        FormKind
	Answers     map[string]string
}

func (FormSubmission) Intent() Intent { return IntentFormSubmission }

// ReviewAction is the reviewer's choice on a ticket.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionDecline ReviewAction = "decline"
)

func (a ReviewAction) TargetStatus() ApplicationStatus {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusDeclined
}

type ReviewDecision struct {
	Interaction InteractionRef
	Reviewer    Actor
	Action      ReviewAction
	ApplicantID string
}

func (ReviewDecision) Intent() Intent { return IntentReviewDecision }

// AdminMessageCommand is a text command typed into a guild channel.
type AdminMessageCommand struct {
	GuildID             string
	ChannelID           string
	MessageID           string
	Author              Actor
	MentionedChannelIDs []string
}

func (AdminMessageCommand) Intent() Intent { return IntentAdminMessage }

// Component custom ids. Review controls carry the applicant id after the prefix.
const (
	CustomIDApplyButton     = "apply_button"
	CustomIDFastTrackButton = "fasttrack_button"
	CustomIDApprovePrefix   = "approve_"
	CustomIDDeclinePrefix   = "decline_"
)

// ReviewCustomID returns the custom id of the control for action on applicantID.
func ReviewCustomID(action ReviewAction, applicantID string) string {
	if action == ActionApprove {
		return CustomIDApprovePrefix + applicantID
	}
	return CustomIDDeclinePrefix + applicantID
}
