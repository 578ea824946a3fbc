package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vedaBack/internal/models"
)

type OfferRepository struct {
	DB *sql.DB
}

// CreateOffer persists a pending offer and debits the company for cost in
// one transaction. If the debit fails nothing is written.
func (r *OfferRepository) CreateOffer(ctx context.Context, offer models.Offer, cost int) (models.Offer, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Offer{}, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var requestStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE id = ?`, offer.RequestID).Scan(&requestStatus)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrRequestNotFound
		return models.Offer{}, err
	}
	if err != nil {
		return models.Offer{}, err
	}
	if requestStatus != models.RequestStatusActive {
		err = models.ErrInvalidState
		return models.Offer{}, err
	}

	var suspended, banned bool
	err = tx.QueryRowContext(ctx, `SELECT suspended, banned FROM companies WHERE id = ?`, offer.CompanyID).Scan(&suspended, &banned)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrCompanyNotFound
		return models.Offer{}, err
	}
	if err != nil {
		return models.Offer{}, err
	}
	if suspended || banned {
		err = models.ErrCompanySuspended
		return models.Offer{}, err
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
                INSERT INTO offers (request_id, company_id, price, message, status, cost_paid, refunded, created_at)
                VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		offer.RequestID, offer.CompanyID, offer.Price, offer.Message, models.OfferStatusPending, cost, now)
	if err != nil {
		return models.Offer{}, err
	}
	insertedID, err := res.LastInsertId()
	if err != nil {
		return models.Offer{}, err
	}

	if _, err = applyDebit(ctx, tx, offer.CompanyID, cost, offer.CompanyID, "offer_created",
		TxRefs{RequestID: offer.RequestID, OfferID: int(insertedID)}); err != nil {
		return models.Offer{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Offer{}, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	offer.ID = int(insertedID)
	offer.Status = models.OfferStatusPending
	offer.CostPaid = cost
	offer.CreatedAt = now
	return offer, nil
}

// GetOffer fetches an offer by id.
func (r *OfferRepository) GetOffer(ctx context.Context, offerID int) (models.Offer, error) {
	var o models.Offer
	err := r.DB.QueryRowContext(ctx, `
                SELECT id, request_id, company_id, price, message, status, cost_paid, refunded, created_at, refunded_at
                FROM offers WHERE id = ?`, offerID).
		Scan(&o.ID, &o.RequestID, &o.CompanyID, &o.Price, &o.Message, &o.Status, &o.CostPaid, &o.Refunded, &o.CreatedAt, &o.RefundedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Offer{}, models.ErrOfferNotFound
	}
	if err != nil {
		return models.Offer{}, err
	}
	return o, nil
}

// ListByRequest returns the offers placed against a request.
func (r *OfferRepository) ListByRequest(ctx context.Context, requestID int) ([]models.Offer, error) {
	rows, err := r.DB.QueryContext(ctx, `
                SELECT id, request_id, company_id, price, message, status, cost_paid, refunded, created_at, refunded_at
                FROM offers WHERE request_id = ? ORDER BY created_at`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.RequestID, &o.CompanyID, &o.Price, &o.Message, &o.Status,
			&o.CostPaid, &o.Refunded, &o.CreatedAt, &o.RefundedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// AcceptOffer marks the target offer accepted, declines every other
// pending sibling and moves the request to accepted, all in one
// transaction. The status guard on the target update loses cleanly to a
// concurrent refund or withdrawal.
func (r *OfferRepository) AcceptOffer(ctx context.Context, requestID, offerID, callerID int) (models.Offer, error) {
	var accepted models.Offer
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return accepted, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ownerID int
	var requestStatus string
	err = tx.QueryRowContext(ctx, `SELECT user_id, status FROM requests WHERE id = ? FOR UPDATE`, requestID).
		Scan(&ownerID, &requestStatus)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrRequestNotFound
		return accepted, err
	}
	if err != nil {
		return accepted, err
	}
	if ownerID != callerID {
		err = models.ErrForbidden
		return accepted, err
	}

	err = tx.QueryRowContext(ctx, `
                SELECT id, request_id, company_id, price, message, status, cost_paid, refunded, created_at, refunded_at
                FROM offers WHERE id = ? FOR UPDATE`, offerID).
		Scan(&accepted.ID, &accepted.RequestID, &accepted.CompanyID, &accepted.Price, &accepted.Message,
			&accepted.Status, &accepted.CostPaid, &accepted.Refunded, &accepted.CreatedAt, &accepted.RefundedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrOfferNotFound
		return accepted, err
	}
	if err != nil {
		return accepted, err
	}
	if accepted.RequestID != requestID {
		err = models.ErrOfferNotFound
		return accepted, err
	}

	res, err := tx.ExecContext(ctx, `UPDATE offers SET status = ? WHERE id = ? AND status = ?`,
		models.OfferStatusAccepted, offerID, models.OfferStatusPending)
	if err != nil {
		return accepted, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return accepted, err
	}
	if rows == 0 {
		err = models.ErrInvalidState
		return accepted, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE offers SET status = ? WHERE request_id = ? AND id <> ? AND status = ?`,
		models.OfferStatusDeclined, requestID, offerID, models.OfferStatusPending); err != nil {
		return accepted, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`,
		models.RequestStatusAccepted, time.Now(), requestID); err != nil {
		return accepted, err
	}

	if err = tx.Commit(); err != nil {
		return accepted, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	accepted.Status = models.OfferStatusAccepted
	return accepted, nil
}

// WithdrawOffer removes a pending offer placed by the company. The paid
// credits are forfeited; the usage transaction stays in the ledger.
func (r *OfferRepository) WithdrawOffer(ctx context.Context, offerID, companyID int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var offerCompanyID int
	var status string
	err = tx.QueryRowContext(ctx, `SELECT company_id, status FROM offers WHERE id = ? FOR UPDATE`, offerID).
		Scan(&offerCompanyID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrOfferNotFound
		return err
	}
	if err != nil {
		return err
	}
	if offerCompanyID != companyID {
		err = models.ErrForbidden
		return err
	}
	if status != models.OfferStatusPending {
		err = models.ErrInvalidState
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM offers WHERE id = ? AND status = ?`,
		offerID, models.OfferStatusPending); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

// ListRefundable returns pending, unrefunded offers created before cutoff.
func (r *OfferRepository) ListRefundable(ctx context.Context, cutoff time.Time) ([]models.Offer, error) {
	rows, err := r.DB.QueryContext(ctx, `
                SELECT id, request_id, company_id, price, message, status, cost_paid, refunded, created_at, refunded_at
                FROM offers
                WHERE status = ? AND refunded = 0 AND created_at < ?
                ORDER BY created_at`, models.OfferStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.RequestID, &o.CompanyID, &o.Price, &o.Message, &o.Status,
			&o.CostPaid, &o.Refunded, &o.CreatedAt, &o.RefundedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// RefundOffer credits the company back cost_paid and marks the offer
// refunded, re-verifying under lock that it is still pending and not yet
// refunded. The refunded flag guarantees at most one refund per offer.
func (r *OfferRepository) RefundOffer(ctx context.Context, offerID, actorID int, reason string) (int, error) {
	var refundedAmount int
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var companyID, requestID, costPaid int
	var status string
	var refunded bool
	err = tx.QueryRowContext(ctx, `
                SELECT company_id, request_id, cost_paid, status, refunded FROM offers WHERE id = ? FOR UPDATE`, offerID).
		Scan(&companyID, &requestID, &costPaid, &status, &refunded)
	if errors.Is(err, sql.ErrNoRows) {
		err = models.ErrOfferNotFound
		return 0, err
	}
	if err != nil {
		return 0, err
	}
	if status != models.OfferStatusPending || refunded {
		err = models.ErrInvalidState
		return 0, err
	}
	if costPaid <= 0 || companyID == 0 {
		err = models.ErrNothingToRefund
		return 0, err
	}

	entry, err := applyCredit(ctx, tx, companyID, costPaid, models.TxRefund, actorID, reason,
		TxRefs{RequestID: requestID, OfferID: offerID})
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE offers SET status = ?, refunded = 1, refunded_at = ? WHERE id = ?`,
		models.OfferStatusRefunded, time.Now(), offerID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	refundedAmount = entry.Amount
	return refundedAmount, nil
}
