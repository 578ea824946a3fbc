package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vedaBack/internal/models"
)

// TxRefs carries the optional request/offer references recorded on a
// ledger entry. Zero means no reference.
type TxRefs struct {
	RequestID int
	OfferID   int
}

// LedgerRepository owns company balances and the append-only credit
// transaction log. Every balance change goes through a single database
// transaction that updates the balance and appends the log entry together,
// so the balance always equals the running sum of the log.
type LedgerRepository struct {
	DB *sql.DB
}

// Credit adds amount credits to the company as the given transaction type
// (purchase or refund). Credits-in never require a floor check.
func (r *LedgerRepository) Credit(ctx context.Context, companyID, amount int, txType string, actorID int, reason string, refs TxRefs) (int, error) {
	if txType != models.TxPurchase && txType != models.TxRefund {
		return 0, fmt.Errorf("ledger: unsupported credit type %q", txType)
	}
	var newBalance int
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		entry, err := applyCredit(ctx, tx, companyID, amount, txType, actorID, reason, refs)
		if err != nil {
			return err
		}
		newBalance = entry.BalanceAfter
		return nil
	})
	return newBalance, err
}

// Adjust applies a signed administrative adjustment and writes the audit
// log row in the same transaction. A negative adjustment that would drive
// the balance below zero is rejected exactly like a debit.
func (r *LedgerRepository) Adjust(ctx context.Context, companyID, signedAmount, actorID int, reason string) (int, error) {
	var newBalance int
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		balance, err := lockBalance(ctx, tx, companyID)
		if err != nil {
			return err
		}
		after := balance + signedAmount
		if after < 0 {
			return models.ErrInsufficientCredits
		}
		if err := writeLedgerEntry(ctx, tx, models.CreditTransaction{
			CompanyID:     companyID,
			Type:          models.TxAdjustment,
			Amount:        signedAmount,
			BalanceBefore: balance,
			BalanceAfter:  after,
			Reason:        reason,
			ActorID:       actorID,
		}); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
                INSERT INTO audit_logs (id, company_id, actor_id, balance_before, balance_after, reason, created_at)
                VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), companyID, actorID, balance, after, reason, time.Now())
		if err != nil {
			return err
		}
		newBalance = after
		return nil
	})
	return newBalance, err
}

// GetBalance returns the current credit balance.
func (r *LedgerRepository) GetBalance(ctx context.Context, companyID int) (int, error) {
	var balance int
	err := r.DB.QueryRowContext(ctx, `SELECT credit_balance FROM companies WHERE id = ?`, companyID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrCompanyNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// GetCompany fetches a company record.
func (r *LedgerRepository) GetCompany(ctx context.Context, companyID int) (models.Company, error) {
	var c models.Company
	err := r.DB.QueryRowContext(ctx, `
                SELECT id, name, credit_balance, suspended, banned, created_at
                FROM companies WHERE id = ?`, companyID).
		Scan(&c.ID, &c.Name, &c.CreditBalance, &c.Suspended, &c.Banned, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Company{}, models.ErrCompanyNotFound
	}
	if err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// ListTransactions returns the company's ledger entries, newest first.
func (r *LedgerRepository) ListTransactions(ctx context.Context, companyID int) ([]models.CreditTransaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
                SELECT id, company_id, type, amount, balance_before, balance_after, reason,
                       COALESCE(request_id, 0), COALESCE(offer_id, 0), actor_id, created_at
                FROM credit_transactions WHERE company_id = ? ORDER BY created_at DESC, id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Type, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
			&t.Reason, &t.RequestID, &t.OfferID, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *LedgerRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

// lockBalance reads the company balance under a row lock so concurrent
// ledger operations against the same company serialize.
func lockBalance(ctx context.Context, tx *sql.Tx, companyID int) (int, error) {
	var balance int
	err := tx.QueryRowContext(ctx, `SELECT credit_balance FROM companies WHERE id = ? FOR UPDATE`, companyID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrCompanyNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// applyDebit performs the usage debit inside the caller's transaction so
// multi-table operations (offer creation) stay atomic.
func applyDebit(ctx context.Context, tx *sql.Tx, companyID, amount, actorID int, reason string, refs TxRefs) (models.CreditTransaction, error) {
	if amount <= 0 {
		return models.CreditTransaction{}, fmt.Errorf("ledger: debit amount must be positive, got %d", amount)
	}
	balance, err := lockBalance(ctx, tx, companyID)
	if err != nil {
		return models.CreditTransaction{}, err
	}
	if amount > balance {
		return models.CreditTransaction{}, models.ErrInsufficientCredits
	}
	entry := models.CreditTransaction{
		CompanyID:     companyID,
		Type:          models.TxUsage,
		Amount:        -amount,
		BalanceBefore: balance,
		BalanceAfter:  balance - amount,
		Reason:        reason,
		RequestID:     refs.RequestID,
		OfferID:       refs.OfferID,
		ActorID:       actorID,
	}
	if err := writeLedgerEntry(ctx, tx, entry); err != nil {
		return models.CreditTransaction{}, err
	}
	return entry, nil
}

// applyCredit performs a credits-in write inside the caller's transaction.
func applyCredit(ctx context.Context, tx *sql.Tx, companyID, amount int, txType string, actorID int, reason string, refs TxRefs) (models.CreditTransaction, error) {
	if amount <= 0 {
		return models.CreditTransaction{}, fmt.Errorf("ledger: credit amount must be positive, got %d", amount)
	}
	balance, err := lockBalance(ctx, tx, companyID)
	if err != nil {
		return models.CreditTransaction{}, err
	}
	entry := models.CreditTransaction{
		CompanyID:     companyID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balance,
		BalanceAfter:  balance + amount,
		Reason:        reason,
		RequestID:     refs.RequestID,
		OfferID:       refs.OfferID,
		ActorID:       actorID,
	}
	if err := writeLedgerEntry(ctx, tx, entry); err != nil {
		return models.CreditTransaction{}, err
	}
	return entry, nil
}

// writeLedgerEntry updates the balance and appends the log row. Both
// writes share the surrounding transaction; one never lands without the
// other.
func writeLedgerEntry(ctx context.Context, tx *sql.Tx, entry models.CreditTransaction) error {
	if _, err := tx.ExecContext(ctx, `UPDATE companies SET credit_balance = ? WHERE id = ?`,
		entry.BalanceAfter, entry.CompanyID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
                INSERT INTO credit_transactions (id, company_id, type, amount, balance_before, balance_after, reason, request_id, offer_id, actor_id, created_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), entry.CompanyID, entry.Type, entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.Reason, nullableID(entry.RequestID), nullableID(entry.OfferID), entry.ActorID, time.Now())
	return err
}

func nullableID(id int) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
