package services

import (
	"context"
	"errors"
	"log"
	"time"

	"vedaBack/internal/models"
)

// sweepActorID marks ledger entries written by the sweeper rather than a
// person.
const sweepActorID = 0

const refundReason = "sla_timeout"

// SweeperService refunds pending offers that overstayed the response SLA
// with no customer action.
type SweeperService struct {
	OfferRepo OfferStore
	SLAWindow time.Duration
	Notifier  *NotifyService
	InfoLog   *log.Logger
	ErrorLog  *log.Logger
}

// RunRefundSweep processes every qualifying offer independently: one
// offer's failure never aborts the rest. Re-running is safe — refunded
// offers are excluded by the query filter and by the in-transaction
// re-check, so no offer is ever refunded twice.
func (s *SweeperService) RunRefundSweep(ctx context.Context) (models.SweepReport, error) {
	var report models.SweepReport

	cutoff := time.Now().Add(-s.SLAWindow)
	offers, err := s.OfferRepo.ListRefundable(ctx, cutoff)
	if err != nil {
		return report, err
	}
	report.Processed = len(offers)

	for _, offer := range offers {
		if offer.CostPaid <= 0 || offer.CompanyID == 0 {
			report.Skipped++
			continue
		}
		amount, err := s.OfferRepo.RefundOffer(ctx, offer.ID, sweepActorID, refundReason)
		switch {
		case err == nil:
			report.Succeeded++
			report.TotalCreditsRefunded += amount
			if s.Notifier != nil {
				s.Notifier.OfferRefunded(ctx, offer)
			}
		case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrNothingToRefund):
			// lost the race to an accept/withdraw, or nothing to pay back
			report.Skipped++
		default:
			report.Failed++
			if s.ErrorLog != nil {
				s.ErrorLog.Printf("refund sweep: offer %d: %v", offer.ID, err)
			}
		}
	}

	if s.InfoLog != nil && report.Processed > 0 {
		s.InfoLog.Printf("refund sweep: processed=%d succeeded=%d skipped=%d failed=%d credits=%d",
			report.Processed, report.Succeeded, report.Skipped, report.Failed, report.TotalCreditsRefunded)
	}
	return report, nil
}
