package test

import (
	"context"

	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// PaymentFacadeStub provides controllable behaviour for payment endpoints.
type PaymentFacadeStub struct {
	CreateOrderFn func(context.Context, usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
	VerifyFn      func(context.Context, usecase.VerifyInput) (*usecase.VerifyResult, error)
	MarkFailedFn  func(context.Context, model.PurchaseKey, model.TransitionPatch) (*usecase.TransitionResult, error)
	StatusFn      func(context.Context, model.PurchaseKey) (*model.Purchase, error)
	WebhookFn     func(context.Context, usecase.WebhookDelivery) (*usecase.WebhookResult, error)
	RefundFn      func(context.Context, usecase.RefundInput) (*usecase.RefundResult, error)
	HealthErr     error

	ProfileResolverStub
}

// CreateOrder delegates to provided function or returns a default order.
func (s PaymentFacadeStub) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, in)
	}
	return &usecase.CreateOrderResult{OrderID: "order_1", Amount: 100, Currency: "INR", Key: "rzp_test_key", PurchaseID: "purchase-1"}, nil
}

// VerifyPayment delegates to provided function or reports a verified payment.
func (s PaymentFacadeStub) VerifyPayment(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyResult, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, in)
	}
	return &usecase.VerifyResult{Verified: true, Recorded: true, OrderID: in.OrderID, PaymentID: in.PaymentID, Status: model.PurchaseStatusPaid}, nil
}

// MarkFailed delegates to provided function or reports a failed purchase.
func (s PaymentFacadeStub) MarkFailed(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*usecase.TransitionResult, error) {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, key, patch)
	}
	return &usecase.TransitionResult{Purchase: &model.Purchase{ID: "purchase-1", Status: model.PurchaseStatusFailed}, Applied: true}, nil
}

// PurchaseStatus delegates to provided function or returns a created purchase.
func (s PaymentFacadeStub) PurchaseStatus(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, key)
	}
	return &model.Purchase{ID: "purchase-1", RazorpayOrderID: key.OrderID, Status: model.PurchaseStatusCreated}, nil
}

// HandleWebhook delegates to provided function or acknowledges the event.
func (s PaymentFacadeStub) HandleWebhook(ctx context.Context, d usecase.WebhookDelivery) (*usecase.WebhookResult, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, d)
	}
	return &usecase.WebhookResult{Event: "payment.captured", Handled: true}, nil
}

// Refund delegates to provided function or reports a refund.
func (s PaymentFacadeStub) Refund(ctx context.Context, in usecase.RefundInput) (*usecase.RefundResult, error) {
	if s.RefundFn != nil {
		return s.RefundFn(ctx, in)
	}
	return &usecase.RefundResult{Success: true, Status: model.PurchaseStatusRefunded, RefundID: "rfnd_1", PurchaseID: in.PurchaseID}, nil
}

// HealthCheck returns HealthErr.
func (s PaymentFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
