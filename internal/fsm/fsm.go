package fsm

import (
	"context"
	"database/sql"
	"time"

	"vedaBack/internal/models"
)

// transitions whitelists the request status changes reachable through the
// general status-update path. Acceptance moves a request to "accepted"
// inside the offer-accept transaction, not through this table.
var transitions = map[string]map[string]struct{}{
	models.RequestStatusClosed:   {models.RequestStatusActive: {}},
	models.RequestStatusAccepted: {models.RequestStatusClosed: {}},
}

// CanTransition reports whether the general path allows from → to.
func CanTransition(from, to string) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a request status with an optimistic guard on the current
// status. A zero rows-affected result means the row moved concurrently.
func Apply(ctx context.Context, tx *sql.Tx, requestID int, fromStatus, toStatus string) error {
	if !CanTransition(fromStatus, toStatus) {
		return models.ErrInvalidTransition
	}
	res, err := tx.ExecContext(ctx, `UPDATE requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		toStatus, time.Now(), requestID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidState
	}
	return nil
}
