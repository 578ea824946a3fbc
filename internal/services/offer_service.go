package services

import (
	"context"
	"time"

	"vedaBack/internal/models"
	"vedaBack/internal/pricing"
)

// OfferStore is the persistence surface the offer lifecycle needs. The
// repository implements it; tests substitute an in-memory fake.
type OfferStore interface {
	CreateOffer(ctx context.Context, offer models.Offer, cost int) (models.Offer, error)
	GetOffer(ctx context.Context, offerID int) (models.Offer, error)
	ListByRequest(ctx context.Context, requestID int) ([]models.Offer, error)
	AcceptOffer(ctx context.Context, requestID, offerID, callerID int) (models.Offer, error)
	WithdrawOffer(ctx context.Context, offerID, companyID int) error
	ListRefundable(ctx context.Context, cutoff time.Time) ([]models.Offer, error)
	RefundOffer(ctx context.Context, offerID, actorID int, reason string) (int, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	GetRequestByID(ctx context.Context, requestID int) (models.Request, error)
	UpdateStatus(ctx context.Context, requestID int, targetStatus string, callerID int) error
	SetAdminCreditCost(ctx context.Context, requestID int, cost *int) error
}

// Admitter is the rate-limit admission gate in front of mutating calls.
type Admitter interface {
	Admit(ctx context.Context, callerKey string) bool
}

type OfferService struct {
	OfferRepo     OfferStore
	RequestRepo   RequestStore
	Pricing       *pricing.Resolver
	CreateLimiter Admitter
	AcceptLimiter Admitter
	Notifier      *NotifyService
}

// CreateOffer prices the request, debits the company and persists the
// pending offer. The debited amount is frozen on the offer as cost_paid.
func (s *OfferService) CreateOffer(ctx context.Context, offer models.Offer, callerKey string) (models.Offer, error) {
	if s.CreateLimiter != nil && !s.CreateLimiter.Admit(ctx, callerKey) {
		return models.Offer{}, models.ErrRateLimited
	}

	req, err := s.RequestRepo.GetRequestByID(ctx, offer.RequestID)
	if err != nil {
		return models.Offer{}, err
	}

	cost := s.Pricing.ResolveCost(req)
	return s.OfferRepo.CreateOffer(ctx, offer, cost)
}

// AcceptOffer selects the single winning offer for the request. Siblings
// are declined in the same storage transaction; no credits move.
func (s *OfferService) AcceptOffer(ctx context.Context, requestID, offerID, callerID int, callerKey string) error {
	if s.AcceptLimiter != nil && !s.AcceptLimiter.Admit(ctx, callerKey) {
		return models.ErrRateLimited
	}

	accepted, err := s.OfferRepo.AcceptOffer(ctx, requestID, offerID, callerID)
	if err != nil {
		return err
	}
	if s.Notifier != nil {
		s.Notifier.OfferAccepted(ctx, accepted)
	}
	return nil
}

// WithdrawOffer removes a pending offer. Paid credits are forfeited.
func (s *OfferService) WithdrawOffer(ctx context.Context, offerID, companyID int) error {
	return s.OfferRepo.WithdrawOffer(ctx, offerID, companyID)
}

// GetOffer fetches one offer.
func (s *OfferService) GetOffer(ctx context.Context, offerID int) (models.Offer, error) {
	return s.OfferRepo.GetOffer(ctx, offerID)
}

// ListOffers returns all offers placed against a request.
func (s *OfferService) ListOffers(ctx context.Context, requestID int) ([]models.Offer, error) {
	return s.OfferRepo.ListByRequest(ctx, requestID)
}

// Quote classifies a request for display without any side effects.
func (s *OfferService) Quote(ctx context.Context, requestID int) (pricing.Classification, error) {
	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return pricing.Classification{}, err
	}
	return s.Pricing.Classify(req), nil
}
