package models

import "time"

// Offer statuses. All three non-pending statuses are terminal.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
	OfferStatusRefunded = "refunded"
)

type Offer struct {
	ID         int        `json:"id"`
	RequestID  int        `json:"request_id"`
	CompanyID  int        `json:"company_id"`
	Price      int        `json:"price"`
	Message    string     `json:"message,omitempty"`
	Status     string     `json:"status"`
	CostPaid   int        `json:"cost_paid"`
	Refunded   bool       `json:"refunded"`
	CreatedAt  time.Time  `json:"created_at"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

// SweepReport summarises one run of the auto-refund sweeper.
type SweepReport struct {
	Processed            int `json:"processed"`
	Succeeded            int `json:"succeeded"`
	Failed               int `json:"failed"`
	Skipped              int `json:"skipped"`
	TotalCreditsRefunded int `json:"total_credits_refunded"`
}
