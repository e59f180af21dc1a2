package handlers

import (
	"context"

	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// CheckoutFacade covers order creation and client reported outcomes.
type CheckoutFacade interface {
	CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyResult, error)
	MarkFailed(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*usecase.TransitionResult, error)
	PurchaseStatus(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error)
}

// WebhookFacade processes gateway callbacks.
type WebhookFacade interface {
	HandleWebhook(ctx context.Context, d usecase.WebhookDelivery) (*usecase.WebhookResult, error)
}

// RefundFacade issues refunds and resolves the admin behind a bearer token.
type RefundFacade interface {
	Refund(ctx context.Context, in usecase.RefundInput) (*usecase.RefundResult, error)
	Profile(ctx context.Context, bearer string) (*model.Profile, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// PaymentFacade aggregates the full set of operations used across handlers.
type PaymentFacade interface {
	CheckoutFacade
	WebhookFacade
	RefundFacade
	HealthFacade
}
