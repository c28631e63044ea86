// internal/workers/application/reserve-submission/handler.go
package reservesubmission

import (
	"context"
	"errors"
	"fmt"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"
)

const (
	TaskType = "reserve-submission"
)

var (
	ErrReservationFailed = errors.New("RESERVATION_FAILED")
	ErrReleaseFailed     = errors.New("RELEASE_FAILED")
)

type Handler struct {
	config *Config
	guard  Guard
	logger logger.Logger
}

func NewHandler(config *Config, guard Guard, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		guard:  guard,
		logger: log.WithFields(map[string]interface{}{"worker": TaskType, "backend": config.Backend}),
	}
}

// TryReserve returns false when userID already holds a reservation. A backend
// error is returned as ErrReservationFailed and never counts as reserved.
func (h *Handler) TryReserve(ctx context.Context, userID string, kind models.FormKind) (bool, error) {
	out, err := h.Execute(ctx, &Input{UserID: userID, Kind: kind})
	if err != nil {
		return false, err
	}
	return out.Reserved, nil
}

// Release drops userID's reservation so the form can be opened again.
func (h *Handler) Release(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrReleaseFailed)
	}
	if err := h.guard.Release(ctx, userID); err != nil {
		h.logger.Error("reservation release failed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return fmt.Errorf("%w: %v", ErrReleaseFailed, err)
	}
	h.logger.Info("submission reservation released", map[string]interface{}{"userId": userID})
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrReservationFailed)
	}

	reserved, err := h.guard.TryReserve(ctx, input.UserID, input.Kind)
	if err != nil {
		h.logger.Error("reservation backend failed", map[string]interface{}{
			"userId": input.UserID,
			"error":  err,
		})
		return nil, fmt.Errorf("%w: %v", ErrReservationFailed, err)
	}

	if !reserved {
		h.logger.Info("duplicate submission blocked", map[string]interface{}{
			"userId":   input.UserID,
			"formKind": string(input.Kind),
		})
		return &Output{Reserved: false}, nil
	}

	h.logger.Info("submission reserved", map[string]interface{}{
		"userId":   input.UserID,
		"formKind": string(input.Kind),
	})
	return &Output{Reserved: true}, nil
}
