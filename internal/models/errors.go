package models

import "errors"

var (
	ErrInsufficientCredits = errors.New("models: insufficient credits")
	ErrForbidden           = errors.New("models: forbidden")
	ErrNotFound            = errors.New("models: no matching record found")
	ErrInvalidState        = errors.New("models: operation not valid for current state")
	ErrInvalidTransition   = errors.New("models: status transition not allowed")
	ErrRateLimited         = errors.New("models: rate limited")
	ErrStorageUnavailable  = errors.New("models: storage unavailable")

	ErrCompanyNotFound  = errors.New("models: company not found")
	ErrRequestNotFound  = errors.New("models: request not found")
	ErrOfferNotFound    = errors.New("models: offer not found")
	ErrCompanySuspended = errors.New("models: company suspended")
	ErrReasonTooShort   = errors.New("models: adjustment reason too short")
	ErrNothingToRefund  = errors.New("models: nothing to refund")
)
