package services

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/messaging"

	"vedaBack/internal/models"
)

type TokenStore interface {
	GetToken(ctx context.Context, userID int) (string, error)
}

// NotifyService sends fire-and-forget FCM pushes. Delivery is a side
// effect: failures are logged and never propagated to the ledger path.
type NotifyService struct {
	Client   *messaging.Client
	Tokens   TokenStore
	ErrorLog *log.Logger
}

func (s *NotifyService) OfferAccepted(ctx context.Context, offer models.Offer) {
	s.send(ctx, offer.CompanyID, "Offer accepted",
		fmt.Sprintf("Your offer for request #%d was accepted", offer.RequestID))
}

func (s *NotifyService) OfferRefunded(ctx context.Context, offer models.Offer) {
	s.send(ctx, offer.CompanyID, "Credits refunded",
		fmt.Sprintf("%d credits were refunded for your unanswered offer #%d", offer.CostPaid, offer.ID))
}

func (s *NotifyService) send(ctx context.Context, userID int, title, body string) {
	if s == nil || s.Client == nil || s.Tokens == nil {
		return
	}
	token, err := s.Tokens.GetToken(ctx, userID)
	if err != nil || token == "" {
		return
	}
	_, err = s.Client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("fcm send to user %d: %v", userID, err)
	}
}
