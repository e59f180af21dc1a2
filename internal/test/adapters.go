package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/polkiloo/travelpay/internal/adapter/content"
	"github.com/polkiloo/travelpay/internal/adapter/mail"
	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	"github.com/polkiloo/travelpay/internal/adapter/replay"
	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
)

// GatewayStub simulates the payment gateway and counts calls.
type GatewayStub struct {
	Key           string
	NotConfigured bool
	CreateOrderFn func(context.Context, razorpay.OrderRequest) (*razorpay.Order, error)
	RefundFn      func(context.Context, string, razorpay.RefundRequest) (*razorpay.Refund, error)

	mu           sync.Mutex
	OrderCalls   []razorpay.OrderRequest
	RefundCalls  []razorpay.RefundRequest
	RefundTarget []string
}

// KeyID returns the public key.
func (g *GatewayStub) KeyID() string {
	if g.Key != "" {
		return g.Key
	}
	return "rzp_test_key"
}

// Configured reports credentials presence.
func (g *GatewayStub) Configured() bool { return !g.NotConfigured }

// CreateOrder records the request and echoes it back as an order.
func (g *GatewayStub) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	g.mu.Lock()
	g.OrderCalls = append(g.OrderCalls, req)
	n := len(g.OrderCalls)
	g.mu.Unlock()
	if g.CreateOrderFn != nil {
		return g.CreateOrderFn(ctx, req)
	}
	return &razorpay.Order{
		ID:       fmt.Sprintf("order_%d", n),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

// Refund records the request and returns a processed refund.
func (g *GatewayStub) Refund(ctx context.Context, paymentID string, req razorpay.RefundRequest) (*razorpay.Refund, error) {
	g.mu.Lock()
	g.RefundCalls = append(g.RefundCalls, req)
	g.RefundTarget = append(g.RefundTarget, paymentID)
	g.mu.Unlock()
	if g.RefundFn != nil {
		return g.RefundFn(ctx, paymentID, req)
	}
	return &razorpay.Refund{ID: "rfnd_1", Amount: req.Amount, PaymentID: paymentID, Status: "processed"}, nil
}

// Calls returns the number of order and refund calls.
func (g *GatewayStub) Calls() (orders, refunds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.OrderCalls), len(g.RefundCalls)
}

// CatalogStub serves content backend documents from function overrides.
type CatalogStub struct {
	DepartureFn      func(context.Context, string) (*content.Departure, error)
	CatalogFn        func(context.Context) ([]content.Product, error)
	PackagesBySlugFn func(context.Context, string) ([]content.Product, error)
	PackageBySlugFn  func(context.Context, string) (*content.Product, error)
}

// Departure returns the configured departure or not found.
func (s CatalogStub) Departure(ctx context.Context, slug string) (*content.Departure, error) {
	if s.DepartureFn != nil {
		return s.DepartureFn(ctx, slug)
	}
	return nil, domainErrors.ErrNotFound
}

// PackageCatalog returns the configured listing or an empty one.
func (s CatalogStub) PackageCatalog(ctx context.Context) ([]content.Product, error) {
	if s.CatalogFn != nil {
		return s.CatalogFn(ctx)
	}
	return nil, nil
}

// PackagesBySlug returns the configured listing or an empty one.
func (s CatalogStub) PackagesBySlug(ctx context.Context, slug string) ([]content.Product, error) {
	if s.PackagesBySlugFn != nil {
		return s.PackagesBySlugFn(ctx, slug)
	}
	return nil, nil
}

// PackageBySlug returns the configured package or not found.
func (s CatalogStub) PackageBySlug(ctx context.Context, slug string) (*content.Product, error) {
	if s.PackageBySlugFn != nil {
		return s.PackageBySlugFn(ctx, slug)
	}
	return nil, domainErrors.ErrNotFound
}

// SenderStub records outgoing mail.
type SenderStub struct {
	SendFn func(context.Context, mail.Message) error

	mu   sync.Mutex
	Sent []mail.Message
}

// Name identifies the stub.
func (s *SenderStub) Name() string { return "stub" }

// Send records msg unless SendFn fails it.
func (s *SenderStub) Send(ctx context.Context, msg mail.Message) error {
	if s.SendFn != nil {
		if err := s.SendFn(ctx, msg); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, msg)
	return nil
}

// Messages returns a copy of the sent messages.
func (s *SenderStub) Messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.Sent...)
}

// GuardStub is an in-memory replay guard.
type GuardStub struct {
	SeenErr     error
	RememberErr error

	mu   sync.Mutex
	keys map[string]bool
}

// Seen reports whether key was remembered.
func (g *GuardStub) Seen(ctx context.Context, key string) (bool, error) {
	if g.SeenErr != nil {
		return false, g.SeenErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.keys[key], nil
}

// Remember stores key.
func (g *GuardStub) Remember(ctx context.Context, key string) error {
	if g.RememberErr != nil {
		return g.RememberErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]bool)
	}
	g.keys[key] = true
	return nil
}

// Len returns the number of remembered keys.
func (g *GuardStub) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}

// RecorderStub collects audit events.
type RecorderStub struct {
	mu     sync.Mutex
	Events []audit.Event
}

// Record stores e.
func (r *RecorderStub) Record(ctx context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

// Outcomes lists recorded outcomes in order.
func (r *RecorderStub) Outcomes() []audit.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Outcome, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Outcome)
	}
	return out
}

// Last returns the most recent event.
func (r *RecorderStub) Last() (audit.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Events) == 0 {
		return audit.Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// ProfileResolverStub resolves bearer tokens to profiles.
type ProfileResolverStub struct {
	ProfileFn func(context.Context, string) (*model.Profile, error)
	Profiles  map[string]*model.Profile
}

// Profile returns the configured profile or content.ErrUnauthorized.
func (s ProfileResolverStub) Profile(ctx context.Context, bearer string) (*model.Profile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, bearer)
	}
	if p, ok := s.Profiles[bearer]; ok {
		return p, nil
	}
	return nil, content.ErrUnauthorized
}

var (
	_ razorpay.Gateway = (*GatewayStub)(nil)
	_ mail.Sender      = (*SenderStub)(nil)
	_ replay.Guard     = (*GuardStub)(nil)
	_ audit.Recorder   = (*RecorderStub)(nil)
)
