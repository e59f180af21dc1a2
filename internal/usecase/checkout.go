package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/domain/repository"
)

// PriceResolver returns authoritative pricing.
type PriceResolver interface {
	Resolve(ctx context.Context, q PricingQuery) (*model.Pricing, error)
}

// CreateOrderInput is the customer's checkout request. It carries no price.
type CreateOrderInput struct {
	FullName              string
	Email                 string
	Phone                 string
	PackageSlug           string
	CheckoutType          model.CheckoutType
	SelectedDepartureDate string
	Travellers            int
	CustomerNote          string
	UserID                string
}

// CreateOrderResult is everything the browser needs to open the gateway checkout.
// Purchase identifiers are empty when the purchase could not be persisted.
type CreateOrderResult struct {
	OrderID         string
	Amount          int64
	Currency        string
	Key             string
	PurchaseID      string
	InternalOrderID string
	ReceiptNumber   string
}

// MaxTravellers bounds the party size of a single checkout.
const MaxTravellers = 100

// CheckoutUseCase creates gateway orders for server priced products.
type CheckoutUseCase struct {
	pricing  PriceResolver
	gateway  razorpay.Gateway
	repo     repository.PurchaseRepository
	currency string
	logger   *slog.Logger
}

// NewCheckoutUseCase constructs the order initiator.
func NewCheckoutUseCase(pricing PriceResolver, gateway razorpay.Gateway, repo repository.PurchaseRepository, currency string, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{pricing: pricing, gateway: gateway, repo: repo, currency: currency, logger: logger}
}

// ComputeCharge returns the total for travellers at price. Per couple prices are
// charged per started pair.
func ComputeCharge(price decimal.Decimal, priceType model.PriceType, travellers int) decimal.Decimal {
	if travellers < 1 {
		travellers = 1
	}
	units := travellers
	if priceType == model.PriceTypePerCouple {
		units = (travellers + 1) / 2
	}
	return price.Mul(decimal.NewFromInt(int64(units)))
}

// CreateOrder prices the request, opens a gateway order and records the purchase.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if !u.gateway.Configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}
	if strings.TrimSpace(in.PackageSlug) == "" {
		return nil, domainErrors.Invalid("packageSlug", "is required")
	}
	if in.Travellers < 1 {
		in.Travellers = 1
	}
	if in.Travellers > MaxTravellers {
		return nil, domainErrors.Invalid("travellers", fmt.Sprintf("must be at most %d", MaxTravellers))
	}

	pricing, err := u.pricing.Resolve(ctx, PricingQuery{
		CheckoutType:  in.CheckoutType,
		Slug:          in.PackageSlug,
		DepartureDate: in.SelectedDepartureDate,
	})
	if err != nil {
		return nil, err
	}

	amount := ComputeCharge(pricing.Price, pricing.PriceType, in.Travellers)
	minor, err := model.MinorUnits(amount)
	if err != nil {
		return nil, domainErrors.Invalid("amount", err.Error())
	}
	if minor <= 0 {
		return nil, domainErrors.Invalid("amount", "must be positive")
	}

	purchaseID := uuid.NewString()
	order, err := u.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   minor,
		Currency: u.currency,
		Receipt:  receiptToken(),
		Notes: map[string]string{
			"purchaseId":   purchaseID,
			"productId":    pricing.ProductID,
			"packageSlug":  pricing.Slug,
			"checkoutType": string(in.CheckoutType),
		},
	})
	if err != nil {
		return nil, err
	}

	result := &CreateOrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Key:      u.gateway.KeyID(),
	}
	if result.Amount == 0 {
		result.Amount = minor
	}
	if result.Currency == "" {
		result.Currency = u.currency
	}

	travelDate := in.SelectedDepartureDate
	if pricing.DepartureDate != "" {
		travelDate = pricing.DepartureDate
	}
	purchase, err := u.repo.Create(ctx, &model.Purchase{
		ID:              purchaseID,
		FullName:        strings.TrimSpace(in.FullName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		UserID:          in.UserID,
		PackageID:       pricing.ProductID,
		PackageSlug:     pricing.Slug,
		PackageTitle:    pricing.Title,
		Destination:     pricing.Destination,
		TravelDate:      travelDate,
		CheckoutType:    in.CheckoutType,
		CustomerNote:    in.CustomerNote,
		Travellers:      in.Travellers,
		UnitPrice:       pricing.Price,
		UnitLabel:       pricing.PriceType.Label(),
		Amount:          amount,
		Currency:        result.Currency,
		RazorpayOrderID: order.ID,
		Status:          model.PurchaseStatusCreated,
	})
	if err != nil {
		u.logger.Error("persist purchase failed",
			slog.String("orderId", order.ID),
			slog.String("purchaseId", purchaseID),
			slog.String("error", err.Error()),
		)
		return result, nil
	}

	result.PurchaseID = purchase.ID
	result.InternalOrderID = purchase.InternalOrderID
	result.ReceiptNumber = purchase.ReceiptNumber
	return result, nil
}

// receiptToken is unique per order and within the gateway's 40 character limit.
func receiptToken() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
