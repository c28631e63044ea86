// internal/workers/data-access/application-store/store.go
package applicationstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"
	"application-intake/internal/workers/data-access/application-store/queries"
)

const (
	TaskType = "application-store"
)

var (
	ErrNotFound            = errors.New("RECORD_NOT_FOUND")
	ErrAlreadyDecided      = errors.New("ALREADY_DECIDED")
	ErrInvalidTransition   = errors.New("INVALID_TRANSITION")
	ErrDatabaseQueryFailed = errors.New("DATABASE_QUERY_FAILED")
)

// Store persists application records and submission claims, keyed by user id.
type Store struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(config *Config, db *sql.DB, log logger.Logger) *Store {
	return &Store{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"worker": TaskType}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

// Upsert inserts or overwrites the record for rec.UserID. SubmittedAt defaults to now.
func (s *Store) Upsert(ctx context.Context, rec *models.ApplicationRecord) error {
	if rec == nil || rec.UserID == "" {
		return fmt.Errorf("%w: record requires a user id", ErrDatabaseQueryFailed)
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = s.now()
	}
	if rec.FormKind == "" {
		rec.FormKind = models.FormStandard
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, queries.UpsertApplication,
		rec.UserID, rec.PlateIdentifier, rec.ProfileHandle, string(rec.FormKind), rec.SubmittedAt)
	if err != nil {
		return fmt.Errorf("%w: upsert application: %v", ErrDatabaseQueryFailed, err)
	}

	rec.Status = models.StatusPendingReview
	rec.DecidedAt = nil
	rec.DecidedBy = ""
	rec.DeclineReason = ""

	s.logger.Info("application stored", map[string]interface{}{
		"userId":   rec.UserID,
		"formKind": string(rec.FormKind),
	})
	return nil
}

// Fetch returns ErrNotFound when no record exists for userID.
func (s *Store) Fetch(ctx context.Context, userID string) (*models.ApplicationRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		rec           models.ApplicationRecord
		formKind      string
		status        string
		decidedAt     sql.NullTime
		decidedBy     sql.NullString
		declineReason sql.NullString
	)
	err := s.db.QueryRowContext(ctx, queries.SelectApplication, userID).Scan(
		&rec.UserID, &rec.PlateIdentifier, &rec.ProfileHandle, &formKind, &status,
		&rec.SubmittedAt, &decidedAt, &decidedBy, &declineReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch application: %v", ErrDatabaseQueryFailed, err)
	}

	rec.FormKind = models.FormKind(formKind)
	rec.Status = models.ApplicationStatus(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		rec.DecidedAt = &t
	}
	rec.DecidedBy = decidedBy.String
	rec.DeclineReason = declineReason.String
	return &rec, nil
}

// Delete reports whether a record existed. The submission claim is left in place.
func (s *Store) Delete(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queries.DeleteApplication, userID)
	if err != nil {
		return false, fmt.Errorf("%w: delete application: %v", ErrDatabaseQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: delete application: %v", ErrDatabaseQueryFailed, err)
	}

	s.logger.Info("application delete", map[string]interface{}{
		"userId":  userID,
		"removed": n > 0,
	})
	return n > 0, nil
}

// Claim records the first form-open for userID. It returns false when a claim already exists.
func (s *Store) Claim(ctx context.Context, userID string, kind models.FormKind) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queries.InsertClaim, userID, string(kind), s.now())
	if err != nil {
		return false, fmt.Errorf("%w: insert claim: %v", ErrDatabaseQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: insert claim: %v", ErrDatabaseQueryFailed, err)
	}
	return n == 1, nil
}

// ReleaseClaim removes userID's claim. Releasing an absent claim is not an error.
func (s *Store) ReleaseClaim(ctx context.Context, userID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, queries.DeleteClaim, userID); err != nil {
		return fmt.Errorf("%w: delete claim: %v", ErrDatabaseQueryFailed, err)
	}
	return nil
}

// Transition moves a pending record to a terminal status in one conditional update.
// Zero matched rows yields ErrNotFound or ErrAlreadyDecided.
func (s *Store) Transition(ctx context.Context, userID string, to models.ApplicationStatus, reviewerID, reason string) error {
	if !to.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, queries.TransitionApplication, userID, string(to), s.now(), reviewerID, reason)
	if err != nil {
		return fmt.Errorf("%w: transition application: %v", ErrDatabaseQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: transition application: %v", ErrDatabaseQueryFailed, err)
	}
	if n == 1 {
		s.logger.Info("application transitioned", map[string]interface{}{
			"userId":     userID,
			"status":     string(to),
			"reviewerId": reviewerID,
		})
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, queries.SelectApplicationStatus, userID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: read status: %v", ErrDatabaseQueryFailed, err)
	}

	s.logger.Warn("transition rejected, application already decided", map[string]interface{}{
		"userId":    userID,
		"status":    current,
		"requested": string(to),
	})
	return ErrAlreadyDecided
}
