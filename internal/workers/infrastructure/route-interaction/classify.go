// internal/workers/infrastructure/route-interaction/classify.go
package routeinteraction

import (
	"strings"
	"unicode"

	"application-intake/internal/common/discord"
	"application-intake/internal/models"
)

// Classify parses a raw interaction into exactly one typed event. ok is
// false for shapes no handler serves.
func Classify(raw discord.RawInteraction) (models.Event, bool) {
	switch raw.Kind {
	case discord.KindCommand:
		return classifyCommand(raw)
	case discord.KindComponent:
		return classifyComponent(raw)
	case discord.KindModalSubmit:
		return classifyModal(raw)
	default:
		return nil, false
	}
}

func classifyCommand(raw discord.RawInteraction) (models.Event, bool) {
	name := models.CommandName(raw.CommandName)
	switch name {
	case models.CommandInfo, models.CommandUnlink:
	default:
		return nil, false
	}

	target := raw.Options["user"]
	return models.CommandInvocation{
		Interaction:    raw.Ref,
		Actor:          raw.Actor,
		Name:           name,
		TargetUserID:   target,
		TargetUsername: raw.Usernames[target],
	}, true
}

func classifyComponent(raw discord.RawInteraction) (models.Event, bool) {
	id := raw.CustomID
	switch {
	case id == models.CustomIDApplyButton:
		return models.FormOpenRequest{Interaction: raw.Ref, Actor: raw.Actor, Kind: models.FormStandard}, true
	case id == models.CustomIDFastTrackButton:
		return models.FormOpenRequest{Interaction: raw.Ref, Actor: raw.Actor, Kind: models.FormFastTrack}, true
	case strings.HasPrefix(id, models.CustomIDApprovePrefix):
		return reviewDecision(raw, models.ActionApprove, strings.TrimPrefix(id, models.CustomIDApprovePrefix))
	case strings.HasPrefix(id, models.CustomIDDeclinePrefix):
		return reviewDecision(raw, models.ActionDecline, strings.TrimPrefix(id, models.CustomIDDeclinePrefix))
	default:
		return nil, false
	}
}

func reviewDecision(raw discord.RawInteraction, action models.ReviewAction, applicantID string) (models.Event, bool) {
	if applicantID == "" {
		return nil, false
	}
	return models.ReviewDecision{
		Interaction: raw.Ref,
		Reviewer:    raw.Actor,
		Action:      action,
		ApplicantID: applicantID,
	}, true
}

func classifyModal(raw discord.RawInteraction) (models.Event, bool) {
	var kind models.FormKind
	switch raw.CustomID {
	case models.StandardForm.ModalID:
		kind = models.FormStandard
	case models.FastTrackForm.ModalID:
		kind = models.FormFastTrack
	default:
		return nil, false
	}

	answers := make(map[string]string, len(raw.Values))
	for k, v := range raw.Values {
		answers[k] = v
	}
	return models.FormSubmission{
		Interaction: raw.Ref,
		Actor:       raw.Actor,
		Kind:        kind,
		Answers:     answers,
	}, true
}

// ClassifyMessage recognises the administrative text command. Direct
// messages, bot authors and other text are not events.
func ClassifyMessage(raw discord.RawMessage, prefix string) (models.Event, bool) {
	if raw.GuildID == "" || raw.AuthorIsBot || prefix == "" {
		return nil, false
	}
	if !hasCommandPrefix(raw.Content, prefix) {
		return nil, false
	}
	return models.AdminMessageCommand{
		GuildID:             raw.GuildID,
		ChannelID:           raw.ChannelID,
		MessageID:           raw.MessageID,
		Author:              raw.Author,
		MentionedChannelIDs: raw.MentionedChannelIDs,
	}, true
}

// hasCommandPrefix matches prefix as a whole word at the start of content.
func hasCommandPrefix(content, prefix string) bool {
	if !strings.HasPrefix(content, prefix) {
		return false
	}
	rest := content[len(prefix):]
	return rest == "" || unicode.IsSpace(rune(rest[0]))
}
