// internal/workers/data-access/application-store/queries/applications.go
package queries

// A resubmission overwrites plate/handle and resets the review state.
const UpsertApplication = `INSERT INTO applications (user_id, plate_identifier, profile_handle, form_kind, status, submitted_at)
VALUES ($1, $2, $3, $4, 'pending_review', $5)
ON CONFLICT (user_id) DO UPDATE SET
    plate_identifier = EXCLUDED.plate_identifier,
    profile_handle = EXCLUDED.profile_handle,
    form_kind = EXCLUDED.form_kind,
    status = 'pending_review',
    submitted_at = EXCLUDED.submitted_at,
    decided_at = NULL,
    decided_by = NULL,
    decline_reason = NULL`

const SelectApplication = `SELECT user_id, plate_identifier, profile_handle, form_kind, status, submitted_at, decided_at, decided_by, decline_reason
FROM applications WHERE user_id = $1`

const DeleteApplication = `DELETE FROM applications WHERE user_id = $1`

const SelectApplicationStatus = `SELECT status FROM applications WHERE user_id = $1`

// TransitionApplication only matches a record still awaiting review.
const TransitionApplication = `UPDATE applications
SET status = $2, decided_at = $3, decided_by = $4, decline_reason = NULLIF($5, '')
WHERE user_id = $1 AND status = 'pending_review'`

const InsertClaim = `INSERT INTO application_claims (user_id, form_kind, claimed_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING`

const DeleteClaim = `DELETE FROM application_claims WHERE user_id = $1`
