package app

import (
	"context"

	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/domain/repository"
	"github.com/polkiloo/travelpay/internal/usecase"
)

// ProfileProvider resolves bearer tokens through the auth backend.
type ProfileProvider interface {
	Profile(ctx context.Context, bearer string) (*model.Profile, error)
}

// PaymentFacade exposes the payment use cases to the transport layer.
type PaymentFacade struct {
	checkout  *usecase.CheckoutUseCase
	verify    *usecase.VerifyUseCase
	purchases *usecase.PurchaseUseCase
	webhook   *usecase.WebhookUseCase
	refund    *usecase.RefundUseCase
	profiles  ProfileProvider
	health    repository.HealthChecker
}

func NewPaymentFacade(
	checkout *usecase.CheckoutUseCase,
	verify *usecase.VerifyUseCase,
	purchases *usecase.PurchaseUseCase,
	webhook *usecase.WebhookUseCase,
	refund *usecase.RefundUseCase,
	profiles ProfileProvider,
	health repository.HealthChecker,
) *PaymentFacade {
	return &PaymentFacade{
		checkout:  checkout,
		verify:    verify,
		purchases: purchases,
		webhook:   webhook,
		refund:    refund,
		profiles:  profiles,
		health:    health,
	}
}

func (f *PaymentFacade) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	return f.checkout.CreateOrder(ctx, in)
}

func (f *PaymentFacade) VerifyPayment(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyResult, error) {
	return f.verify.Verify(ctx, in)
}

func (f *PaymentFacade) MarkFailed(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*usecase.TransitionResult, error) {
	return f.purchases.MarkFailed(ctx, key, patch)
}

func (f *PaymentFacade) HandleWebhook(ctx context.Context, d usecase.WebhookDelivery) (*usecase.WebhookResult, error) {
	return f.webhook.Handle(ctx, d)
}

func (f *PaymentFacade) Refund(ctx context.Context, in usecase.RefundInput) (*usecase.RefundResult, error) {
	return f.refund.Refund(ctx, in)
}

func (f *PaymentFacade) PurchaseStatus(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error) {
	return f.purchases.Get(ctx, key)
}

func (f *PaymentFacade) Profile(ctx context.Context, bearer string) (*model.Profile, error) {
	return f.profiles.Profile(ctx, bearer)
}

func (f *PaymentFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
