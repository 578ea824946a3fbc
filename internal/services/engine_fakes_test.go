package services

import (
	"context"
	"sync"
	"time"

	"vedaBack/internal/models"
	"vedaBack/internal/repositories"
)

// memEngine is an in-memory stand-in for the repositories, mirroring their
// guard semantics (debit floor, pending-only transitions, refunded flag).
type memEngine struct {
	mu        sync.Mutex
	companies map[int]*models.Company
	requests  map[int]*models.Request
	offers    map[int]*models.Offer
	ledger    []models.CreditTransaction
	audits    []models.AuditLog
	nextID    int
}

func newMemEngine() *memEngine {
	return &memEngine{
		companies: make(map[int]*models.Company),
		requests:  make(map[int]*models.Request),
		offers:    make(map[int]*models.Offer),
		nextID:    1,
	}
}

func (m *memEngine) addCompany(id, balance int) {
	m.companies[id] = &models.Company{ID: id, CreditBalance: balance, CreatedAt: time.Now()}
}

func (m *memEngine) addRequest(req models.Request) models.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID
	m.nextID++
	if req.Status == "" {
		req.Status = models.RequestStatusActive
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	m.requests[req.ID] = &req
	return req
}

func (m *memEngine) appendTx(companyID int, txType string, amount, actorID int, reason string, refs repositories.TxRefs) models.CreditTransaction {
	c := m.companies[companyID]
	entry := models.CreditTransaction{
		CompanyID:     companyID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: c.CreditBalance,
		BalanceAfter:  c.CreditBalance + amount,
		Reason:        reason,
		RequestID:     refs.RequestID,
		OfferID:       refs.OfferID,
		ActorID:       actorID,
		CreatedAt:     time.Now(),
	}
	c.CreditBalance = entry.BalanceAfter
	m.ledger = append(m.ledger, entry)
	return entry
}

// balanceMatchesLedger checks that the balance equals the seeded starting
// balance plus the running sum of the company's signed ledger amounts.
func (m *memEngine) balanceMatchesLedger(companyID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	initial := m.companies[companyID].CreditBalance
	sum := 0
	seen := false
	for _, tx := range m.ledger {
		if tx.CompanyID != companyID {
			continue
		}
		if !seen {
			initial = tx.BalanceBefore
			seen = true
		}
		sum += tx.Amount
	}
	return m.companies[companyID].CreditBalance == initial+sum
}

// OfferStore

func (m *memEngine) CreateOffer(_ context.Context, offer models.Offer, cost int) (models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[offer.RequestID]
	if !ok {
		return models.Offer{}, models.ErrRequestNotFound
	}
	if req.Status != models.RequestStatusActive {
		return models.Offer{}, models.ErrInvalidState
	}
	c, ok := m.companies[offer.CompanyID]
	if !ok {
		return models.Offer{}, models.ErrCompanyNotFound
	}
	if c.Suspended || c.Banned {
		return models.Offer{}, models.ErrCompanySuspended
	}
	if cost > c.CreditBalance {
		return models.Offer{}, models.ErrInsufficientCredits
	}
	offer.ID = m.nextID
	m.nextID++
	offer.Status = models.OfferStatusPending
	offer.CostPaid = cost
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = time.Now()
	}
	m.offers[offer.ID] = &offer
	m.appendTx(offer.CompanyID, models.TxUsage, -cost, offer.CompanyID, "offer_created",
		repositories.TxRefs{RequestID: offer.RequestID, OfferID: offer.ID})
	return offer, nil
}

func (m *memEngine) GetOffer(_ context.Context, offerID int) (models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerID]
	if !ok {
		return models.Offer{}, models.ErrOfferNotFound
	}
	return *o, nil
}

func (m *memEngine) ListByRequest(_ context.Context, requestID int) ([]models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Offer
	for _, o := range m.offers {
		if o.RequestID == requestID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memEngine) AcceptOffer(_ context.Context, requestID, offerID, callerID int) (models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return models.Offer{}, models.ErrRequestNotFound
	}
	if req.UserID != callerID {
		return models.Offer{}, models.ErrForbidden
	}
	o, ok := m.offers[offerID]
	if !ok || o.RequestID != requestID {
		return models.Offer{}, models.ErrOfferNotFound
	}
	if o.Status != models.OfferStatusPending {
		return models.Offer{}, models.ErrInvalidState
	}
	o.Status = models.OfferStatusAccepted
	for _, sibling := range m.offers {
		if sibling.RequestID == requestID && sibling.ID != offerID && sibling.Status == models.OfferStatusPending {
			sibling.Status = models.OfferStatusDeclined
		}
	}
	req.Status = models.RequestStatusAccepted
	return *o, nil
}

func (m *memEngine) WithdrawOffer(_ context.Context, offerID, companyID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerID]
	if !ok {
		return models.ErrOfferNotFound
	}
	if o.CompanyID != companyID {
		return models.ErrForbidden
	}
	if o.Status != models.OfferStatusPending {
		return models.ErrInvalidState
	}
	delete(m.offers, offerID)
	return nil
}

func (m *memEngine) ListRefundable(_ context.Context, cutoff time.Time) ([]models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Offer
	for _, o := range m.offers {
		if o.Status == models.OfferStatusPending && !o.Refunded && o.CreatedAt.Before(cutoff) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memEngine) RefundOffer(_ context.Context, offerID, actorID int, reason string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerID]
	if !ok {
		return 0, models.ErrOfferNotFound
	}
	if o.Status != models.OfferStatusPending || o.Refunded {
		return 0, models.ErrInvalidState
	}
	if o.CostPaid <= 0 || o.CompanyID == 0 {
		return 0, models.ErrNothingToRefund
	}
	if _, ok := m.companies[o.CompanyID]; !ok {
		return 0, models.ErrCompanyNotFound
	}
	entry := m.appendTx(o.CompanyID, models.TxRefund, o.CostPaid, actorID, reason,
		repositories.TxRefs{RequestID: o.RequestID, OfferID: o.ID})
	now := time.Now()
	o.Status = models.OfferStatusRefunded
	o.Refunded = true
	o.RefundedAt = &now
	return entry.Amount, nil
}

// RequestStore

func (m *memEngine) CreateRequest(_ context.Context, req models.Request) (models.Request, error) {
	return m.addRequest(req), nil
}

func (m *memEngine) GetRequestByID(_ context.Context, requestID int) (models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return models.Request{}, models.ErrRequestNotFound
	}
	return *req, nil
}

func (m *memEngine) UpdateStatus(_ context.Context, requestID int, targetStatus string, callerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return models.ErrRequestNotFound
	}
	if req.UserID != callerID {
		return models.ErrForbidden
	}
	allowed := (req.Status == models.RequestStatusClosed && targetStatus == models.RequestStatusActive) ||
		(req.Status == models.RequestStatusAccepted && targetStatus == models.RequestStatusClosed)
	if !allowed {
		return models.ErrInvalidTransition
	}
	req.Status = targetStatus
	return nil
}

func (m *memEngine) SetAdminCreditCost(_ context.Context, requestID int, cost *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return models.ErrRequestNotFound
	}
	req.AdminCreditCost = cost
	return nil
}

// LedgerStore

func (m *memEngine) Credit(_ context.Context, companyID, amount int, txType string, actorID int, reason string, refs repositories.TxRefs) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[companyID]
	if !ok {
		return 0, models.ErrCompanyNotFound
	}
	m.appendTx(companyID, txType, amount, actorID, reason, refs)
	return c.CreditBalance, nil
}

func (m *memEngine) Adjust(_ context.Context, companyID, signedAmount, actorID int, reason string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[companyID]
	if !ok {
		return 0, models.ErrCompanyNotFound
	}
	if c.CreditBalance+signedAmount < 0 {
		return 0, models.ErrInsufficientCredits
	}
	entry := m.appendTx(companyID, models.TxAdjustment, signedAmount, actorID, reason, repositories.TxRefs{})
	m.audits = append(m.audits, models.AuditLog{
		CompanyID:     companyID,
		ActorID:       actorID,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Reason:        reason,
		CreatedAt:     entry.CreatedAt,
	})
	return c.CreditBalance, nil
}

func (m *memEngine) GetBalance(_ context.Context, companyID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[companyID]
	if !ok {
		return 0, models.ErrCompanyNotFound
	}
	return c.CreditBalance, nil
}

func (m *memEngine) GetCompany(_ context.Context, companyID int) (models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[companyID]
	if !ok {
		return models.Company{}, models.ErrCompanyNotFound
	}
	return *c, nil
}

func (m *memEngine) ListTransactions(_ context.Context, companyID int) ([]models.CreditTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CreditTransaction
	for _, tx := range m.ledger {
		if tx.CompanyID == companyID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeAdmitter struct {
	allow bool
}

func (f fakeAdmitter) Admit(context.Context, string) bool { return f.allow }
