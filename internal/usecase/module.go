package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/travelpay/internal/adapter/content"
	"github.com/polkiloo/travelpay/internal/adapter/mail"
	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	"github.com/polkiloo/travelpay/internal/config"
	"github.com/polkiloo/travelpay/internal/domain/repository"
)

// Module provides the payment use cases to the fx container.
var Module = fx.Provide(
	newPricingUseCase,
	newCheckoutUseCase,
	NewPurchaseUseCase,
	newReceiptNotifier,
	NewVerifyUseCase,
	NewWebhookUseCase,
	NewRefundUseCase,
)

type checkoutParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Pricing *PricingUseCase
	Gateway razorpay.Gateway
	Repo    repository.PurchaseRepository
}

func newPricingUseCase(catalog *content.Client, logger *slog.Logger) *PricingUseCase {
	return NewPricingUseCase(catalog, logger)
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Pricing, p.Gateway, p.Repo, p.Config.Currency, p.Logger)
}

func newReceiptNotifier(cfg *config.Config, sender mail.Sender, repo repository.PurchaseRepository, logger *slog.Logger) *ReceiptNotifier {
	return NewReceiptNotifier(sender, repo, cfg.Mail.AdminEmail, logger)
}

var (
	_ Catalog       = (*content.Client)(nil)
	_ PriceResolver = (*PricingUseCase)(nil)
)
