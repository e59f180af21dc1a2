package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
	testhelpers "github.com/polkiloo/travelpay/internal/test"
	"github.com/polkiloo/travelpay/internal/usecase"
)

type fixedPrice struct{}

func (fixedPrice) Resolve(context.Context, usecase.PricingQuery) (*model.Pricing, error) {
	return &model.Pricing{ProductID: "pkg-1", Slug: "goa", Price: decimal.NewFromInt(5000), PriceType: model.PriceTypePerCouple}, nil
}

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

func newFacade() (*PaymentFacade, *testhelpers.PurchaseRepositoryStub) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	repo := testhelpers.NewPurchaseRepositoryStub()
	gateway := &testhelpers.GatewayStub{}
	verifier := signature.NewVerifier("secret", "hook")
	purchases := usecase.NewPurchaseUseCase(repo, logger)
	notifier := usecase.NewReceiptNotifier(&testhelpers.SenderStub{}, repo, "", logger)

	facade := NewPaymentFacade(
		usecase.NewCheckoutUseCase(fixedPrice{}, gateway, repo, "INR", logger),
		usecase.NewVerifyUseCase(verifier, purchases, notifier, logger),
		purchases,
		usecase.NewWebhookUseCase(verifier, purchases, &testhelpers.GuardStub{}, logger),
		usecase.NewRefundUseCase(gateway, purchases, &testhelpers.RecorderStub{}, logger),
		testhelpers.ProfileResolverStub{Profiles: map[string]*model.Profile{"admin-token": {ID: "1", Role: model.RoleAdmin}}},
		healthStub{},
	)
	return facade, repo
}

func TestPaymentFacadeLifecycle(t *testing.T) {
	facade, _ := newFacade()
	ctx := context.Background()

	order, err := facade.CreateOrder(ctx, usecase.CreateOrderInput{PackageSlug: "goa", Travellers: 3, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create order returned error: %v", err)
	}
	if order.Amount != 1000000 {
		t.Fatalf("expected per couple charge, got %d", order.Amount)
	}

	verified, err := facade.VerifyPayment(ctx, usecase.VerifyInput{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: signature.PaymentSignature("secret", order.OrderID, "pay_1"),
	})
	if err != nil || verified.Status != model.PurchaseStatusPaid {
		t.Fatalf("unexpected verify result %+v %v", verified, err)
	}

	status, err := facade.PurchaseStatus(ctx, model.PurchaseKey{PurchaseID: order.PurchaseID})
	if err != nil || status.Status != model.PurchaseStatusPaid {
		t.Fatalf("unexpected status %+v %v", status, err)
	}

	if _, err := facade.MarkFailed(ctx, model.PurchaseKey{OrderID: order.OrderID}, model.TransitionPatch{}); !errors.Is(err, domainErrors.ErrStateConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	refund, err := facade.Refund(ctx, usecase.RefundInput{PurchaseID: order.PurchaseID, PaymentID: "pay_1"})
	if err != nil || refund.Status != model.PurchaseStatusRefunded {
		t.Fatalf("unexpected refund %+v %v", refund, err)
	}
}

func TestPaymentFacadeWebhook(t *testing.T) {
	facade, _ := newFacade()
	if _, err := facade.HandleWebhook(context.Background(), usecase.WebhookDelivery{Body: []byte(`{}`), Signature: "bad"}); !errors.Is(err, signature.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func TestPaymentFacadeProfileAndHealth(t *testing.T) {
	facade, _ := newFacade()
	profile, err := facade.Profile(context.Background(), "admin-token")
	if err != nil || !profile.IsAdmin() {
		t.Fatalf("unexpected profile %+v %v", profile, err)
	}
	if _, err := facade.Profile(context.Background(), "other"); err == nil {
		t.Fatal("expected unknown token to fail")
	}
	if err := facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}
}
