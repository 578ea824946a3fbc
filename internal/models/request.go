package models

import "time"

// Request statuses. Customer-facing transitions through the general status
// update path are whitelisted in internal/fsm.
const (
	RequestStatusActive    = "active"
	RequestStatusPaused    = "paused"
	RequestStatusAccepted  = "accepted"
	RequestStatusClosed    = "closed"
	RequestStatusCancelled = "cancelled"
)

type Request struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	FromCity        string     `json:"from_city"`
	FromCounty      string     `json:"from_county,omitempty"`
	ToCity          string     `json:"to_city"`
	ToCounty        string     `json:"to_county,omitempty"`
	Description     string     `json:"description,omitempty"`
	AdminCreditCost *int       `json:"admin_credit_cost,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}
