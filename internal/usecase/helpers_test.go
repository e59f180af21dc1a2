package usecase_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
	"github.com/polkiloo/travelpay/internal/test"
	"github.com/polkiloo/travelpay/internal/usecase"
)

const (
	keySecret     = "key-secret"
	webhookSecret = "webhook-secret"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	repo     *test.PurchaseRepositoryStub
	gateway  *test.GatewayStub
	sender   *test.SenderStub
	guard    *test.GuardStub
	recorder *test.RecorderStub

	purchases *usecase.PurchaseUseCase
	verify    *usecase.VerifyUseCase
	webhook   *usecase.WebhookUseCase
	refund    *usecase.RefundUseCase
}

func newHarness() *harness {
	logger := discardLogger()
	h := &harness{
		repo:     test.NewPurchaseRepositoryStub(),
		gateway:  &test.GatewayStub{},
		sender:   &test.SenderStub{},
		guard:    &test.GuardStub{},
		recorder: &test.RecorderStub{},
	}
	verifier := signature.NewVerifier(keySecret, webhookSecret)
	h.purchases = usecase.NewPurchaseUseCase(h.repo, logger)
	notifier := usecase.NewReceiptNotifier(h.sender, h.repo, "admin@example.com", logger)
	h.verify = usecase.NewVerifyUseCase(verifier, h.purchases, notifier, logger)
	h.webhook = usecase.NewWebhookUseCase(verifier, h.purchases, h.guard, logger)
	h.refund = usecase.NewRefundUseCase(h.gateway, h.purchases, h.recorder, logger)
	return h
}

func (h *harness) seed(status model.PurchaseStatus) model.Purchase {
	p := model.Purchase{
		ID:              "purchase-1",
		InternalOrderID: "TRV-00000001",
		FullName:        "Asha Rao",
		Email:           "asha@example.com",
		PackageTitle:    "Spiti Circuit",
		Travellers:      2,
		UnitPrice:       decimal.NewFromInt(10000),
		UnitLabel:       model.UnitLabelPerPerson,
		Amount:          decimal.NewFromInt(20000),
		Currency:        "INR",
		RazorpayOrderID: "order_1",
		Status:          status,
	}
	if status == model.PurchaseStatusPaid || status == model.PurchaseStatusRefunded {
		p.RazorpayPaymentID = "pay_1"
		p.ReceiptNumber = "RCPT-20260101-000001"
	}
	h.repo.Put(p)
	return p
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
