package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/domain/repository"
)

// PurchaseRepositoryStub stores purchases in memory with the same compare-and-set
// semantics as the Postgres store. It is safe for concurrent use.
type PurchaseRepositoryStub struct {
	CreateErr     error
	TransitionErr error
	ClaimErr      error
	HealthErr     error

	mu          sync.Mutex
	purchases   map[string]*model.Purchase
	history     []HistoryEntry
	nextOrder   int
	nextReceipt int
	transitions int
	releases    int
}

// HistoryEntry is one recorded status change.
type HistoryEntry struct {
	PurchaseID string
	From       model.PurchaseStatus
	To         model.PurchaseStatus
}

// NewPurchaseRepositoryStub constructs an empty repository.
func NewPurchaseRepositoryStub() *PurchaseRepositoryStub {
	return &PurchaseRepositoryStub{purchases: make(map[string]*model.Purchase)}
}

// HealthCheck returns HealthErr.
func (s *PurchaseRepositoryStub) HealthCheck(context.Context) error {
	return s.HealthErr
}

// Put stores p as is, replacing a purchase with the same id.
func (s *PurchaseRepositoryStub) Put(p model.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.purchases[p.ID] = &p
}

// Snapshot returns a copy of the purchase with id.
func (s *PurchaseRepositoryStub) Snapshot(id string) (model.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return model.Purchase{}, false
	}
	return *p, true
}

// History returns recorded status changes in order.
func (s *PurchaseRepositoryStub) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryEntry(nil), s.history...)
}

// AppliedTransitions counts successful compare-and-set updates.
func (s *PurchaseRepositoryStub) AppliedTransitions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitions
}

// Releases counts ReleaseReceipt calls.
func (s *PurchaseRepositoryStub) Releases() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

// Create stores a new purchase and assigns the internal order id.
func (s *PurchaseRepositoryStub) Create(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	p := *purchase
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.purchases[p.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	for _, existing := range s.purchases {
		if p.RazorpayOrderID != "" && existing.RazorpayOrderID == p.RazorpayOrderID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	s.nextOrder++
	p.InternalOrderID = fmt.Sprintf("TRV-%08d", s.nextOrder)
	if p.Status == "" {
		p.Status = model.PurchaseStatusCreated
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.purchases[p.ID] = &p
	s.history = append(s.history, HistoryEntry{PurchaseID: p.ID, To: p.Status})
	out := p
	return &out, nil
}

// Get finds a purchase by gateway order id first, then by purchase id.
func (s *PurchaseRepositoryStub) Get(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error) {
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(key)
	if p == nil {
		return nil, domainErrors.ErrNotFound
	}
	out := *p
	return &out, nil
}

// GetByPaymentID finds a purchase by its gateway payment id.
func (s *PurchaseRepositoryStub) GetByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if paymentID != "" && p.RazorpayPaymentID == paymentID {
			out := *p
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Transition applies patch only while the purchase status equals from.
func (s *PurchaseRepositoryStub) Transition(ctx context.Context, key model.PurchaseKey, from, to model.PurchaseStatus, patch model.TransitionPatch) (*model.Purchase, error) {
	if s.TransitionErr != nil {
		return nil, s.TransitionErr
	}
	if !from.CanTransition(to) {
		return nil, domainErrors.ErrInvalidTransition
	}
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(key)
	if p == nil || p.Status != from {
		return nil, domainErrors.ErrPreconditionFailed
	}

	now := time.Now().UTC()
	switch to {
	case model.PurchaseStatusPaid:
		p.RazorpayPaymentID = coalesce(patch.PaymentID, p.RazorpayPaymentID)
		p.RazorpaySignature = coalesce(patch.Signature, p.RazorpaySignature)
		p.PaymentMethod = coalesce(patch.PaymentMethod, p.PaymentMethod)
		p.PaidAt = &now
		if p.ReceiptNumber == "" {
			s.nextReceipt++
			p.ReceiptNumber = fmt.Sprintf("RCPT-%s-%06d", now.Format("20060102"), s.nextReceipt)
		}
	case model.PurchaseStatusFailed:
		p.RazorpayPaymentID = coalesce(patch.PaymentID, p.RazorpayPaymentID)
		p.PaymentMethod = coalesce(patch.PaymentMethod, p.PaymentMethod)
		p.FailureCode = patch.FailureCode
		p.FailureReason = patch.FailureReason
		p.FailureSource = patch.FailureSource
		p.FailureStep = patch.FailureStep
	case model.PurchaseStatusRefunded:
		p.RefundID = patch.RefundID
		p.RefundedAmount = patch.RefundedAmount
		p.RefundNotes = patch.RefundNotes
		p.RefundedAt = &now
	}
	p.Status = to
	p.UpdatedAt = now
	s.transitions++
	s.history = append(s.history, HistoryEntry{PurchaseID: p.ID, From: from, To: to})
	out := *p
	return &out, nil
}

// ClaimReceipt marks the receipt as sent unless it already was.
func (s *PurchaseRepositoryStub) ClaimReceipt(ctx context.Context, purchaseID string) (bool, error) {
	if s.ClaimErr != nil {
		return false, s.ClaimErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[purchaseID]
	if !ok || p.ReceiptSentAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	p.ReceiptSentAt = &now
	return true, nil
}

// ReleaseReceipt clears a receipt claim.
func (s *PurchaseRepositoryStub) ReleaseReceipt(ctx context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	if p, ok := s.purchases[purchaseID]; ok {
		p.ReceiptSentAt = nil
	}
	return nil
}

func (s *PurchaseRepositoryStub) find(key model.PurchaseKey) *model.Purchase {
	var byID *model.Purchase
	for _, p := range s.purchases {
		if key.OrderID != "" && p.RazorpayOrderID == key.OrderID {
			return p
		}
		if key.PurchaseID != "" && p.ID == key.PurchaseID &&
			(key.OrderID == "" || p.RazorpayOrderID == "" || p.RazorpayOrderID == key.OrderID) {
			byID = p
		}
	}
	return byID
}

func (s *PurchaseRepositoryStub) ensure() {
	if s.purchases == nil {
		s.purchases = make(map[string]*model.Purchase)
	}
}

func coalesce(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

var (
	_ repository.PurchaseRepository = (*PurchaseRepositoryStub)(nil)
	_ repository.HealthChecker      = (*PurchaseRepositoryStub)(nil)
)
