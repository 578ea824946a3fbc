package services

import (
	"context"
	"fmt"
	"strings"

	"vedaBack/internal/models"
	"vedaBack/internal/repositories"
)

// Admin-driven balance changes are the highest-risk ledger path, so the
// free-text reason must carry real content.
const minAdjustReasonLength = 5

type LedgerStore interface {
	Credit(ctx context.Context, companyID, amount int, txType string, actorID int, reason string, refs repositories.TxRefs) (int, error)
	Adjust(ctx context.Context, companyID, signedAmount, actorID int, reason string) (int, error)
	GetBalance(ctx context.Context, companyID int) (int, error)
	GetCompany(ctx context.Context, companyID int) (models.Company, error)
	ListTransactions(ctx context.Context, companyID int) ([]models.CreditTransaction, error)
}

type CreditService struct {
	LedgerRepo    LedgerStore
	AdjustLimiter Admitter
}

// Purchase records an already-settled credit grant. Payment capture is the
// gateway's concern; by the time this runs the money has moved.
func (s *CreditService) Purchase(ctx context.Context, companyID, amount, actorID int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit purchase amount must be positive, got %d", amount)
	}
	return s.LedgerRepo.Credit(ctx, companyID, amount, models.TxPurchase, actorID, "credit_purchase", repositories.TxRefs{})
}

// AdjustCredits applies a signed admin adjustment. The repository enforces
// the floor at zero and writes the audit row in the same transaction.
func (s *CreditService) AdjustCredits(ctx context.Context, companyID, signedAmount, actorID int, reason, callerKey string) (int, error) {
	if s.AdjustLimiter != nil && !s.AdjustLimiter.Admit(ctx, callerKey) {
		return 0, models.ErrRateLimited
	}
	if signedAmount == 0 {
		return 0, fmt.Errorf("adjustment amount must be non-zero")
	}
	if len(strings.TrimSpace(reason)) < minAdjustReasonLength {
		return 0, models.ErrReasonTooShort
	}
	return s.LedgerRepo.Adjust(ctx, companyID, signedAmount, actorID, reason)
}

func (s *CreditService) GetBalance(ctx context.Context, companyID int) (int, error) {
	return s.LedgerRepo.GetBalance(ctx, companyID)
}

func (s *CreditService) GetCompany(ctx context.Context, companyID int) (models.Company, error) {
	return s.LedgerRepo.GetCompany(ctx, companyID)
}

func (s *CreditService) ListTransactions(ctx context.Context, companyID int) ([]models.CreditTransaction, error) {
	return s.LedgerRepo.ListTransactions(ctx, companyID)
}
