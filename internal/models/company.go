package models

import "time"

type Company struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	CreditBalance int       `json:"credit_balance"`
	Suspended     bool      `json:"suspended"`
	Banned        bool      `json:"banned"`
	CreatedAt     time.Time `json:"created_at"`
}

// Active reports whether the company may spend credits. A ban always
// implies suspension.
func (c Company) Active() bool {
	return !c.Suspended && !c.Banned
}
