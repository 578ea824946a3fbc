package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vedaBack/internal/models"
	"vedaBack/internal/pricing"
)

func testResolver() *pricing.Resolver {
	return pricing.NewResolver(pricing.Config{
		Tier1Cities:   []string{"Almaty", "Astana", "Shymkent"},
		Tier2Cities:   []string{"Karaganda", "Aktobe"},
		Tier2Counties: []string{"Almaty Region"},
		Tier1Cost:     80,
		Tier2Cost:     50,
		Tier3Cost:     30,
	})
}

func newTestOfferService(m *memEngine) *OfferService {
	return &OfferService{
		OfferRepo:     m,
		RequestRepo:   m,
		Pricing:       testResolver(),
		CreateLimiter: fakeAdmitter{allow: true},
		AcceptLimiter: fakeAdmitter{allow: true},
	}
}

func TestCreateOfferDebitsResolvedCost(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Karaganda", ToCity: "Balkhash"})
	svc := newTestOfferService(m)

	offer, err := svc.CreateOffer(context.Background(), models.Offer{RequestID: req.ID, CompanyID: 10, Price: 45000}, "10.0.0.1")
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if offer.Status != models.OfferStatusPending {
		t.Fatalf("expected pending offer, got %s", offer.Status)
	}
	if offer.CostPaid != 50 {
		t.Fatalf("expected tier-2 cost 50 frozen on the offer, got %d", offer.CostPaid)
	}
	if balance, _ := m.GetBalance(context.Background(), 10); balance != 50 {
		t.Fatalf("expected balance 50 after debit, got %d", balance)
	}
	txs, _ := m.ListTransactions(context.Background(), 10)
	if len(txs) != 1 || txs[0].Type != models.TxUsage || txs[0].Amount != -50 {
		t.Fatalf("expected one usage transaction of -50, got %+v", txs)
	}
	if !m.balanceMatchesLedger(10) {
		t.Fatalf("balance does not match ledger sum")
	}
}

func TestCreateOfferAdminOverride(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	seven := 7
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Almaty", ToCity: "Astana", AdminCreditCost: &seven})
	svc := newTestOfferService(m)

	offer, err := svc.CreateOffer(context.Background(), models.Offer{RequestID: req.ID, CompanyID: 10}, "10.0.0.1")
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if offer.CostPaid != 7 {
		t.Fatalf("admin override should win over tier cost, got %d", offer.CostPaid)
	}
}

func TestCreateOfferInsufficientCredits(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 20)
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Almaty", ToCity: "Astana"})
	svc := newTestOfferService(m)

	_, err := svc.CreateOffer(context.Background(), models.Offer{RequestID: req.ID, CompanyID: 10}, "10.0.0.1")
	if !errors.Is(err, models.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if balance, _ := m.GetBalance(context.Background(), 10); balance != 20 {
		t.Fatalf("failed debit must not touch the balance, got %d", balance)
	}
	txs, _ := m.ListTransactions(context.Background(), 10)
	if len(txs) != 0 {
		t.Fatalf("failed debit must not append to the ledger, got %d entries", len(txs))
	}
	offers, _ := m.ListByRequest(context.Background(), req.ID)
	if len(offers) != 0 {
		t.Fatalf("no offer record may be written when the debit fails")
	}
}

func TestCreateOfferRateLimited(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	req := m.addRequest(models.Request{UserID: 1})
	svc := newTestOfferService(m)
	svc.CreateLimiter = fakeAdmitter{allow: false}

	_, err := svc.CreateOffer(context.Background(), models.Offer{RequestID: req.ID, CompanyID: 10}, "10.0.0.1")
	if !errors.Is(err, models.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAcceptDeclinesSiblingsWithoutBalanceChange(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	m.addCompany(20, 100)
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Karaganda", ToCity: "Balkhash"})
	svc := newTestOfferService(m)
	ctx := context.Background()

	winner, err := svc.CreateOffer(ctx, models.Offer{RequestID: req.ID, CompanyID: 10}, "a")
	if err != nil {
		t.Fatalf("CreateOffer winner: %v", err)
	}
	loser, err := svc.CreateOffer(ctx, models.Offer{RequestID: req.ID, CompanyID: 20}, "b")
	if err != nil {
		t.Fatalf("CreateOffer loser: %v", err)
	}

	if err := svc.AcceptOffer(ctx, req.ID, winner.ID, 1, "c"); err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}

	got, _ := svc.GetOffer(ctx, winner.ID)
	if got.Status != models.OfferStatusAccepted {
		t.Fatalf("winner should be accepted, got %s", got.Status)
	}
	got, _ = svc.GetOffer(ctx, loser.ID)
	if got.Status != models.OfferStatusDeclined {
		t.Fatalf("sibling should be declined, got %s", got.Status)
	}
	updated, _ := m.GetRequestByID(ctx, req.ID)
	if updated.Status != models.RequestStatusAccepted {
		t.Fatalf("request should be accepted, got %s", updated.Status)
	}
	if balance, _ := m.GetBalance(ctx, 10); balance != 50 {
		t.Fatalf("no credits move on acceptance, got %d", balance)
	}

	// only one offer may ever be accepted
	if err := svc.AcceptOffer(ctx, req.ID, loser.ID, 1, "c"); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("accepting a declined offer must fail with ErrInvalidState, got %v", err)
	}
}

func TestAcceptForbiddenForNonOwner(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	req := m.addRequest(models.Request{UserID: 1})
	svc := newTestOfferService(m)
	ctx := context.Background()

	offer, _ := svc.CreateOffer(ctx, models.Offer{RequestID: req.ID, CompanyID: 10}, "a")
	if err := svc.AcceptOffer(ctx, req.ID, offer.ID, 99, "b"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestWithdrawForfeitsCredits(t *testing.T) {
	m := newMemEngine()
	m.addCompany(10, 100)
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Almaty", ToCity: "Astana"})
	svc := newTestOfferService(m)
	ctx := context.Background()

	offer, _ := svc.CreateOffer(ctx, models.Offer{RequestID: req.ID, CompanyID: 10}, "a")

	if err := svc.WithdrawOffer(ctx, offer.ID, 20); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("withdraw by another company must be forbidden, got %v", err)
	}
	if err := svc.WithdrawOffer(ctx, offer.ID, 10); err != nil {
		t.Fatalf("WithdrawOffer: %v", err)
	}
	if balance, _ := m.GetBalance(ctx, 10); balance != 20 {
		t.Fatalf("withdrawal must not refund, expected 20 got %d", balance)
	}
	if _, err := svc.GetOffer(ctx, offer.ID); !errors.Is(err, models.ErrOfferNotFound) {
		t.Fatalf("withdrawn offer should be gone, got %v", err)
	}
}

func TestQuoteUsesStoredRequest(t *testing.T) {
	m := newMemEngine()
	req := m.addRequest(models.Request{UserID: 1, FromCity: "Almaty", ToCity: "Karaganda"})
	svc := newTestOfferService(m)

	c, err := svc.Quote(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if c.Tier != 1 || c.Cost != 80 {
		t.Fatalf("tier-1 endpoint must win, got %+v", c)
	}
}

func agedOffer(m *memEngine, svc *OfferService, requestID, companyID int, age time.Duration) models.Offer {
	offer, err := svc.CreateOffer(context.Background(), models.Offer{RequestID: requestID, CompanyID: companyID}, "a")
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	m.offers[offer.ID].CreatedAt = time.Now().Add(-age)
	m.mu.Unlock()
	return offer
}
