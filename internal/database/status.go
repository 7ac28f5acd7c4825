package database

import (
	"context"
	"fmt"

	"github.com/andriandrian/lifeline-admin/internal/models"
)

const donationPending = `confirmed_at IS NULL AND rejected_at IS NULL AND canceled_at IS NULL AND donated_at IS NULL`

// UpdateDonationStatus moves a donation along pending -> confirmed -> donated,
// or from pending to rejected or canceled.
func (q *Queries) UpdateDonationStatus(ctx context.Context, id int64, change models.StatusChange) error {
	var query string
	args := []any{id, nullableID(change.UpdatedBy)}

	switch change.Type {
	case models.StatusVerify:
		query = `UPDATE donations SET confirmed_at = now(), updated_by = $2 WHERE id = $1 AND ` + donationPending
	case models.StatusReject:
		query = `UPDATE donations SET rejected_at = now(), rejected_reason = $3, updated_by = $2 WHERE id = $1 AND ` + donationPending
		args = append(args, change.RejectionReason)
	case models.StatusCancel:
		query = `UPDATE donations SET canceled_at = now(), updated_by = $2 WHERE id = $1 AND ` + donationPending
	case models.StatusDonate:
		query = `
			UPDATE donations SET donated_at = now(), updated_by = $2
			WHERE id = $1 AND confirmed_at IS NOT NULL
				AND rejected_at IS NULL AND canceled_at IS NULL AND donated_at IS NULL
		`
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedStatus, change.Type)
	}

	return q.transition(ctx, "donations", id, query, args...)
}

// UpdateDonationRequestStatus verifies an open request or closes it.
func (q *Queries) UpdateDonationRequestStatus(ctx context.Context, id int64, change models.StatusChange) error {
	var query string
	switch change.Type {
	case models.StatusVerify:
		query = `UPDATE donation_requests SET verified_at = now() WHERE id = $1 AND verified_at IS NULL AND closed_at IS NULL`
	case models.StatusClose:
		query = `UPDATE donation_requests SET closed_at = now() WHERE id = $1 AND closed_at IS NULL`
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedStatus, change.Type)
	}

	return q.transition(ctx, "donation_requests", id, query, id)
}

// transition runs a guarded update and tells a missing row apart from a row in the wrong state.
func (q *Queries) transition(ctx context.Context, table string, id int64, query string, args ...any) error {
	res, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.db.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
