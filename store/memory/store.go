package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/subledger"
	"github.com/xraph/subledger/discount"
	"github.com/xraph/subledger/group"
	"github.com/xraph/subledger/installment"
	"github.com/xraph/subledger/payment"
	"github.com/xraph/subledger/plan"
	"github.com/xraph/subledger/referral"
	"github.com/xraph/subledger/subscription"
)

type Store struct {
	mu sync.RWMutex

	// Plan catalog, keyed (adminID, code)
	plans map[string]*plan.Plan

	// Discount codes keyed (adminID, code), histories keyed by user
	codes     map[string]*discount.Code
	histories map[string]*discount.History

	// One subscription per user
	subscriptions map[string]*subscription.Subscription

	// Referral stats keyed by user
	referrals map[string]*referral.Stats

	// One group per admin
	groups map[string]*group.Group

	// Installment plans keyed by payer, sequenced per payer
	installments map[string][]*installment.Plan

	// Receipts and escrows, append-ordered per payer
	receipts map[string][]*payment.Receipt
	escrows  map[string][]*payment.Escrow

	// Price feeds keyed by oracle admin
	feeds map[string]*payment.PriceFeed
}

func New() *Store {
	return &Store{
		plans:         make(map[string]*plan.Plan),
		codes:         make(map[string]*discount.Code),
		histories:     make(map[string]*discount.History),
		subscriptions: make(map[string]*subscription.Subscription),
		referrals:     make(map[string]*referral.Stats),
		groups:        make(map[string]*group.Group),
		installments:  make(map[string][]*installment.Plan),
		receipts:      make(map[string][]*payment.Receipt),
		escrows:       make(map[string][]*payment.Escrow),
		feeds:         make(map[string]*payment.PriceFeed),
	}
}

func scopedKey(adminID, code string) string {
	return fmt.Sprintf("%s/%s", adminID, code)
}

// Plan Store implementation

func (s *Store) CreatePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(p.AdminID, p.Code)
	if _, exists := s.plans[key]; exists {
		return subledger.ErrPlanExists
	}
	s.plans[key] = p
	return nil
}

func (s *Store) GetPlan(_ context.Context, adminID, code string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[scopedKey(adminID, code)]; ok {
		return p, nil
	}
	return nil, subledger.ErrPlanNotFound
}

func (s *Store) ListPlans(_ context.Context, adminID string) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*plan.Plan, 0)
	for _, p := range s.plans {
		if p.AdminID == adminID {
			result = append(result, p)
		}
	}
	return result, nil
}

// Discount Store implementation

func (s *Store) CreateDiscountCode(_ context.Context, c *discount.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(c.AdminID, c.Code)
	if _, exists := s.codes[key]; exists {
		return subledger.ErrDiscountCodeExists
	}
	s.codes[key] = c
	return nil
}

func (s *Store) GetDiscountCode(_ context.Context, adminID, code string) (*discount.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.codes[scopedKey(adminID, code)]; ok {
		return c, nil
	}
	return nil, subledger.ErrDiscountCodeNotFound
}

func (s *Store) UpdateDiscountCode(_ context.Context, c *discount.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(c.AdminID, c.Code)
	if _, exists := s.codes[key]; !exists {
		return subledger.ErrDiscountCodeNotFound
	}
	s.codes[key] = c
	return nil
}

func (s *Store) GetHistory(_ context.Context, userID string) (*discount.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h, ok := s.histories[userID]; ok {
		return h, nil
	}
	return nil, subledger.ErrNotFound
}

func (s *Store) PutHistory(_ context.Context, h *discount.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[h.UserID] = h
	return nil
}

// Subscription Store implementation

func (s *Store) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.UserID]; exists {
		return subledger.ErrAlreadySubscribed
	}
	s.subscriptions[sub.UserID] = sub
	return nil
}

func (s *Store) GetSubscription(_ context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscriptions[userID]; ok {
		return sub, nil
	}
	return nil, subledger.ErrSubscriptionNotFound
}

func (s *Store) UpdateSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.UserID]; !exists {
		return subledger.ErrSubscriptionNotFound
	}
	s.subscriptions[sub.UserID] = sub
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[userID]; !exists {
		return subledger.ErrSubscriptionNotFound
	}
	delete(s.subscriptions, userID)
	return nil
}

// Referral Store implementation

func (s *Store) GetReferralStats(_ context.Context, userID string) (*referral.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.referrals[userID]; ok {
		return st, nil
	}
	return nil, subledger.ErrNotFound
}

func (s *Store) PutReferralStats(_ context.Context, st *referral.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.referrals[st.UserID] = st
	return nil
}

// Group Store implementation

func (s *Store) CreateGroup(_ context.Context, g *group.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[g.AdminID]; exists {
		return subledger.ErrGroupExists
	}
	s.groups[g.AdminID] = g
	return nil
}

func (s *Store) GetGroup(_ context.Context, adminID string) (*group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if g, ok := s.groups[adminID]; ok {
		return g, nil
	}
	return nil, subledger.ErrGroupNotFound
}

func (s *Store) UpdateGroup(_ context.Context, g *group.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[g.AdminID]; !exists {
		return subledger.ErrGroupNotFound
	}
	s.groups[g.AdminID] = g
	return nil
}

func (s *Store) DeleteGroup(_ context.Context, adminID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[adminID]; !exists {
		return subledger.ErrGroupNotFound
	}
	delete(s.groups, adminID)
	return nil
}

// Installment Store implementation

func (s *Store) CreateInstallmentPlan(_ context.Context, p *installment.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Seq = int64(len(s.installments[p.PayerID])) + 1
	s.installments[p.PayerID] = append(s.installments[p.PayerID], p)
	return nil
}

func (s *Store) GetInstallmentPlan(_ context.Context, payerID string, seq int64) (*installment.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.installments[payerID] {
		if p.Seq == seq {
			return p, nil
		}
	}
	return nil, subledger.ErrInstallmentNotFound
}

func (s *Store) UpdateInstallmentPlan(_ context.Context, p *installment.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.installments[p.PayerID] {
		if existing.Seq == p.Seq {
			s.installments[p.PayerID][i] = p
			return nil
		}
	}
	return subledger.ErrInstallmentNotFound
}

func (s *Store) ListInstallmentPlans(_ context.Context, payerID string) ([]*installment.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := s.installments[payerID]
	result := make([]*installment.Plan, len(plans))
	copy(result, plans)
	return result, nil
}

// Receipt Store implementation

func (s *Store) AppendReceipt(_ context.Context, r *payment.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Seq = int64(len(s.receipts[r.Payer])) + 1
	s.receipts[r.Payer] = append(s.receipts[r.Payer], r)
	return nil
}

func (s *Store) ListReceipts(_ context.Context, payerID string) ([]*payment.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipts := s.receipts[payerID]
	result := make([]*payment.Receipt, len(receipts))
	copy(result, receipts)
	return result, nil
}

// Escrow Store implementation

func (s *Store) CreateEscrow(_ context.Context, e *payment.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Seq = int64(len(s.escrows[e.Payer])) + 1
	s.escrows[e.Payer] = append(s.escrows[e.Payer], e)
	return nil
}

func (s *Store) GetEscrow(_ context.Context, payerID string, seq int64) (*payment.Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.escrows[payerID] {
		if e.Seq == seq {
			return e, nil
		}
	}
	return nil, subledger.ErrEscrowNotFound
}

func (s *Store) UpdateEscrow(_ context.Context, e *payment.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.escrows[e.Payer] {
		if existing.Seq == e.Seq {
			s.escrows[e.Payer][i] = e
			return nil
		}
	}
	return subledger.ErrEscrowNotFound
}

func (s *Store) ListEscrows(_ context.Context, payerID string) ([]*payment.Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	escrows := s.escrows[payerID]
	result := make([]*payment.Escrow, len(escrows))
	copy(result, escrows)
	return result, nil
}

// Price feed Store implementation

func (s *Store) GetPriceFeed(_ context.Context, adminID string) (*payment.PriceFeed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.feeds[adminID]; ok {
		return f, nil
	}
	return nil, subledger.ErrPriceFeedNotFound
}

func (s *Store) PutPriceFeed(_ context.Context, f *payment.PriceFeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feeds[f.AdminID] = f
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
