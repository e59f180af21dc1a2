package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/signature"
)

// VerifyInput is a client reported checkout completion.
type VerifyInput struct {
	OrderID       string
	PaymentID     string
	Signature     string
	PurchaseID    string
	PaymentMethod string
	Display       ReceiptDisplay
}

// VerifyResult is the authoritative outcome of a verification. Recorded is false when
// the signature was authentic but no local purchase matched.
type VerifyResult struct {
	Verified                   bool
	Recorded                   bool
	OrderID                    string
	PaymentID                  string
	PurchaseID                 string
	InternalOrderID            string
	ReceiptNumber              string
	Status                     model.PurchaseStatus
	ReceiptEmailSentToCustomer bool
	ReceiptEmailSentToAdmin    bool
}

// VerifyUseCase authenticates client reported payments and settles the purchase.
type VerifyUseCase struct {
	verifier  *signature.Verifier
	purchases *PurchaseUseCase
	notifier  *ReceiptNotifier
	logger    *slog.Logger
}

// NewVerifyUseCase constructs the verifier flow.
func NewVerifyUseCase(verifier *signature.Verifier, purchases *PurchaseUseCase, notifier *ReceiptNotifier, logger *slog.Logger) *VerifyUseCase {
	return &VerifyUseCase{verifier: verifier, purchases: purchases, notifier: notifier, logger: logger}
}

// Verify checks the payment signature and marks the purchase paid. A bad signature
// returns signature.ErrInvalidSignature with Verified false and touches nothing.
func (u *VerifyUseCase) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	switch {
	case in.OrderID == "":
		return &VerifyResult{}, domainErrors.Invalid("razorpay_order_id", "is required")
	case in.PaymentID == "":
		return &VerifyResult{}, domainErrors.Invalid("razorpay_payment_id", "is required")
	case strings.TrimSpace(in.Signature) == "":
		return &VerifyResult{}, domainErrors.Invalid("razorpay_signature", "is required")
	}

	if err := u.verifier.VerifyPayment(in.OrderID, in.PaymentID, in.Signature); err != nil {
		if errors.Is(err, signature.ErrInvalidSignature) {
			u.logger.Warn("payment signature rejected", slog.String("orderId", in.OrderID), slog.String("paymentId", in.PaymentID))
		}
		return &VerifyResult{}, err
	}

	result := &VerifyResult{Verified: true, OrderID: in.OrderID, PaymentID: in.PaymentID, PurchaseID: in.PurchaseID}
	transition, err := u.purchases.MarkPaid(ctx, model.PurchaseKey{OrderID: in.OrderID, PurchaseID: in.PurchaseID}, model.TransitionPatch{
		PaymentID:     in.PaymentID,
		Signature:     in.Signature,
		PaymentMethod: in.PaymentMethod,
	})
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		u.logger.Warn("verified payment has no purchase record", slog.String("orderId", in.OrderID), slog.String("purchaseId", in.PurchaseID))
		u.applyReceipt(result, u.notifier.Notify(ctx, nil, in.Display))
		return result, nil
	case err != nil && transition != nil:
		fillVerifyResult(result, transition.Purchase)
		return result, err
	case err != nil:
		return result, err
	}

	fillVerifyResult(result, transition.Purchase)
	result.Recorded = true
	u.applyReceipt(result, u.notifier.Notify(ctx, transition.Purchase, in.Display))
	return result, nil
}

func (u *VerifyUseCase) applyReceipt(result *VerifyResult, out ReceiptOutcome) {
	result.ReceiptEmailSentToCustomer = out.CustomerSent
	result.ReceiptEmailSentToAdmin = out.AdminSent
}

func fillVerifyResult(result *VerifyResult, p *model.Purchase) {
	if p == nil {
		return
	}
	result.PurchaseID = p.ID
	result.InternalOrderID = p.InternalOrderID
	result.ReceiptNumber = p.ReceiptNumber
	result.Status = p.Status
}
