// internal/workers/infrastructure/route-interaction/router.go
package routeinteraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"application-intake/internal/common/discord"
	apperrors "application-intake/internal/common/errors"
	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
	"application-intake/internal/models"
)

const (
	TaskType = "route-interaction"
)

const intentIgnored = "ignored"

type FormOpenHandler interface {
	Handle(ctx context.Context, req models.FormOpenRequest) error
}

type FormSubmissionHandler interface {
	Handle(ctx context.Context, sub models.FormSubmission) error
}

type ReviewHandler interface {
	Handle(ctx context.Context, d models.ReviewDecision) error
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd models.CommandInvocation) error
}

type AdminMessageHandler interface {
	Handle(ctx context.Context, cmd models.AdminMessageCommand) error
}

// Handlers is the dispatch table. A nil entry makes its intent ignored.
type Handlers struct {
	FormOpen       FormOpenHandler
	FormSubmission FormSubmissionHandler
	Review         ReviewHandler
	Commands       map[models.CommandName]CommandHandler
	AdminMessage   AdminMessageHandler
}

// Router classifies inbound events and invokes the matching handler. It
// keeps no per-event state and is safe for concurrent use.
type Router struct {
	config   *Config
	handlers Handlers
	logger   logger.Logger
}

func NewRouter(config *Config, handlers Handlers, log logger.Logger) *Router {
	return &Router{
		config:   config,
		handlers: handlers,
		logger:   log.WithFields(map[string]interface{}{"worker": TaskType}),
	}
}

func (r *Router) HandleInteraction(ctx context.Context, raw discord.RawInteraction) {
	ev, ok := Classify(raw)
	if !ok {
		r.ignore("unrecognized interaction", map[string]interface{}{
			"kind":        int(raw.Kind),
			"customId":    raw.CustomID,
			"commandName": raw.CommandName,
		})
		return
	}
	_ = r.Dispatch(ctx, ev)
}

func (r *Router) HandleMessage(ctx context.Context, raw discord.RawMessage) {
	ev, ok := ClassifyMessage(raw, r.config.AdminCommandPrefix)
	if !ok {
		// ordinary chat traffic
		metrics.InteractionsTotal.WithLabelValues(intentIgnored).Inc()
		return
	}
	_ = r.Dispatch(ctx, ev)
}

// Dispatch runs the handler for ev under the interaction timeout and
// returns its error after recording it.
func (r *Router) Dispatch(ctx context.Context, ev models.Event) (err error) {
	intent := string(ev.Intent())

	if r.config.InteractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.InteractionTimeout)
		defer cancel()
	}

	metrics.InteractionsTotal.WithLabelValues(intent).Inc()
	metrics.InteractionsActive.WithLabelValues(intent).Inc()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
		metrics.InteractionsActive.WithLabelValues(intent).Dec()
		metrics.InteractionDuration.WithLabelValues(intent).Observe(time.Since(start).Seconds())
		if err != nil {
			code := errorCode(err)
			metrics.InteractionsFailed.WithLabelValues(intent, code).Inc()
			r.logger.Error("interaction handling failed", map[string]interface{}{
				"intent":    intent,
				"errorCode": code,
				"error":     err.Error(),
			})
		}
	}()

	handled, err := r.route(ctx, ev)
	if !handled {
		r.ignore("no handler for intent", map[string]interface{}{"intent": intent})
	}
	return err
}

func (r *Router) route(ctx context.Context, ev models.Event) (bool, error) {
	switch e := ev.(type) {
	case models.FormOpenRequest:
		if r.handlers.FormOpen == nil {
			return false, nil
		}
		return true, r.handlers.FormOpen.Handle(ctx, e)
	case models.FormSubmission:
		if r.handlers.FormSubmission == nil {
			return false, nil
		}
		return true, r.handlers.FormSubmission.Handle(ctx, e)
	case models.ReviewDecision:
		if r.handlers.Review == nil {
			return false, nil
		}
		return true, r.handlers.Review.Handle(ctx, e)
	case models.CommandInvocation:
		h, ok := r.handlers.Commands[e.Name]
		if !ok || h == nil {
			return false, nil
		}
		return true, h.Handle(ctx, e)
	case models.AdminMessageCommand:
		if r.handlers.AdminMessage == nil {
			return false, nil
		}
		return true, r.handlers.AdminMessage.Handle(ctx, e)
	default:
		return false, nil
	}
}

func (r *Router) ignore(msg string, fields map[string]interface{}) {
	metrics.InteractionsTotal.WithLabelValues(intentIgnored).Inc()
	r.logger.Debug(msg, fields)
}

// errorCode prefers a StandardError code, then a leading sentinel code such
// as "DATABASE_INSERT_FAILED: ...".
func errorCode(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, ':'); i > 0 && isCode(msg[:i]) {
		return msg[:i]
	}
	return string(apperrors.ErrCodeInternal)
}

func isCode(s string) bool {
	for _, c := range s {
		if (c < 'A' || c > 'Z') && c != '_' {
			return false
		}
	}
	return true
}
