package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vedaBack/internal/fsm"
	"vedaBack/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

// CreateRequest inserts a new active request owned by the customer.
func (r *RequestRepository) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	now := time.Now()
	res, err := r.DB.ExecContext(ctx, `
                INSERT INTO requests (user_id, from_city, from_county, to_city, to_county, description, admin_credit_cost, status, created_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.UserID, req.FromCity, req.FromCounty, req.ToCity, req.ToCounty, req.Description,
		req.AdminCreditCost, models.RequestStatusActive, now)
	if err != nil {
		return models.Request{}, err
	}
	insertedID, err := res.LastInsertId()
	if err != nil {
		return models.Request{}, err
	}
	req.ID = int(insertedID)
	req.Status = models.RequestStatusActive
	req.CreatedAt = now
	return req, nil
}

// GetRequestByID fetches a request.
func (r *RequestRepository) GetRequestByID(ctx context.Context, requestID int) (models.Request, error) {
	var req models.Request
	err := r.DB.QueryRowContext(ctx, `
                SELECT id, user_id, from_city, from_county, to_city, to_county, description, admin_credit_cost, status, created_at, updated_at
                FROM requests WHERE id = ?`, requestID).
		Scan(&req.ID, &req.UserID, &req.FromCity, &req.FromCounty, &req.ToCity, &req.ToCounty,
			&req.Description, &req.AdminCreditCost, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.ErrRequestNotFound
	}
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// UpdateStatus moves a request through the whitelisted transition table.
// The whitelist is checked before any write; the optimistic guard inside
// fsm.Apply catches a concurrent move.
func (r *RequestRepository) UpdateStatus(ctx context.Context, requestID int, targetStatus string, callerID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ownerID int
	var status string
	err = tx.QueryRowContext(ctx, `SELECT user_id, status FROM requests WHERE id = ? FOR UPDATE`, requestID).
		Scan(&ownerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrRequestNotFound
		return err
	}
	if err != nil {
		return err
	}
	if ownerID != callerID {
		err = models.ErrForbidden
		return err
	}

	if err = fsm.Apply(ctx, tx, requestID, status, targetStatus); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

// SetAdminCreditCost stores or clears the per-request pricing override.
func (r *RequestRepository) SetAdminCreditCost(ctx context.Context, requestID int, cost *int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE requests SET admin_credit_cost = ?, updated_at = ? WHERE id = ?`,
		cost, time.Now(), requestID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}
