package models

import "time"

// Credit transaction types. Amount is stored signed: purchase, refund and
// positive adjustments are credits-in, usage and negative adjustments are
// credits-out.
const (
	TxPurchase   = "purchase"
	TxUsage      = "usage"
	TxRefund     = "refund"
	TxAdjustment = "adjustment"
)

// CreditTransaction is an immutable append-only ledger record. The company
// balance must always equal the running sum of its signed amounts.
type CreditTransaction struct {
	ID            string    `json:"id"`
	CompanyID     int       `json:"company_id"`
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	BalanceBefore int       `json:"balance_before"`
	BalanceAfter  int       `json:"balance_after"`
	Reason        string    `json:"reason,omitempty"`
	RequestID     int       `json:"request_id,omitempty"`
	OfferID       int       `json:"offer_id,omitempty"`
	ActorID       int       `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditLog records an administrative balance change alongside the ledger
// entry written in the same transaction.
type AuditLog struct {
	ID            string    `json:"id"`
	CompanyID     int       `json:"company_id"`
	ActorID       int       `json:"actor_id"`
	BalanceBefore int       `json:"balance_before"`
	BalanceAfter  int       `json:"balance_after"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}
