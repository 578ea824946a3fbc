package services

import (
	"context"

	"vedaBack/internal/models"
)

type RequestService struct {
	RequestRepo RequestStore
}

func (s *RequestService) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	return s.RequestRepo.CreateRequest(ctx, req)
}

func (s *RequestService) GetRequest(ctx context.Context, requestID int) (models.Request, error) {
	return s.RequestRepo.GetRequestByID(ctx, requestID)
}

// UpdateRequestStatus moves a request through the whitelisted transitions
// (reactivate a closed request, finalize an accepted one). Anything else
// is rejected before a write happens.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, requestID int, targetStatus string, callerID int) error {
	switch targetStatus {
	case models.RequestStatusActive, models.RequestStatusPaused, models.RequestStatusAccepted,
		models.RequestStatusClosed, models.RequestStatusCancelled:
	default:
		return models.ErrInvalidTransition
	}
	return s.RequestRepo.UpdateStatus(ctx, requestID, targetStatus, callerID)
}

// SetAdminCreditCost stores the admin pricing override for a request.
// Costs of offers already created stay frozen.
func (s *RequestService) SetAdminCreditCost(ctx context.Context, requestID int, cost *int) error {
	if cost != nil && *cost < 0 {
		return models.ErrInvalidState
	}
	return s.RequestRepo.SetAdminCreditCost(ctx, requestID, cost)
}
