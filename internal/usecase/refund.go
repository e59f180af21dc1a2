package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/travelpay/internal/adapter/razorpay"
	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/pkg/audit"
)

// Actor is the authenticated administrator behind a request.
type Actor struct {
	ID       string
	Email    string
	Role     string
	RemoteIP string
	Token    string
}

// RefundInput describes a refund request. A nil Amount refunds the full charge.
type RefundInput struct {
	PurchaseID string
	OrderID    string
	PaymentID  string
	Amount     *decimal.Decimal
	Speed      string
	Notes      map[string]string
	Actor      Actor
}

// RefundResult is the outcome of an issued refund.
type RefundResult struct {
	Success        bool
	Status         model.PurchaseStatus
	RefundID       string
	RefundedAmount decimal.Decimal
	PurchaseID     string
}

// RefundStateStaleError reports a refund the gateway accepted but the store did not record.
type RefundStateStaleError struct {
	RefundID string
	Err      error
}

func (e *RefundStateStaleError) Error() string {
	return fmt.Sprintf("refund %s issued but purchase state is stale: %v", e.RefundID, e.Err)
}

func (e *RefundStateStaleError) Unwrap() error {
	return e.Err
}

// RefundUseCase issues gateway refunds for paid purchases.
type RefundUseCase struct {
	gateway   razorpay.Gateway
	purchases *PurchaseUseCase
	recorder  audit.Recorder
	logger    *slog.Logger
}

// NewRefundUseCase constructs the refund flow.
func NewRefundUseCase(gateway razorpay.Gateway, purchases *PurchaseUseCase, recorder audit.Recorder, logger *slog.Logger) *RefundUseCase {
	return &RefundUseCase{gateway: gateway, purchases: purchases, recorder: recorder, logger: logger}
}

// Refund validates the request against the stored purchase, refunds at the gateway and
// records the refund. Every outcome is audited.
func (u *RefundUseCase) Refund(ctx context.Context, in RefundInput) (*RefundResult, error) {
	in.PaymentID = strings.TrimSpace(in.PaymentID)
	event := audit.Event{
		Action:     audit.ActionRefund,
		ActorID:    in.Actor.ID,
		ActorEmail: in.Actor.Email,
		ActorRole:  in.Actor.Role,
		RemoteIP:   in.Actor.RemoteIP,
		Token:      in.Actor.Token,
		PaymentID:  in.PaymentID,
		PurchaseID: in.PurchaseID,
	}
	deny := func(reason string, err error) (*RefundResult, error) {
		event.Outcome = audit.OutcomeDenied
		event.Reason = reason
		u.recorder.Record(ctx, event)
		return nil, err
	}

	if !u.gateway.Configured() {
		return deny("gateway_not_configured", domainErrors.ErrGatewayNotConfigured)
	}
	if in.PaymentID == "" {
		return deny("missing_payment_id", domainErrors.Invalid("razorpayPaymentId", "is required"))
	}
	speed := strings.ToLower(strings.TrimSpace(in.Speed))
	if speed != "" && speed != "normal" && speed != "optimum" {
		return deny("invalid_speed", domainErrors.Invalid("speed", "must be normal or optimum"))
	}

	purchase, err := u.lookup(ctx, in)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return deny("purchase_not_found", err)
		}
		return deny("purchase_lookup_failed", err)
	}
	event.PurchaseID = purchase.ID

	switch {
	case purchase.Status == model.PurchaseStatusRefunded:
		return deny("already_refunded", fmt.Errorf("%w: purchase %s is already refunded", domainErrors.ErrStateConflict, purchase.ID))
	case purchase.Status != model.PurchaseStatusPaid:
		return deny("not_paid", fmt.Errorf("%w: purchase %s is %s", domainErrors.ErrInvalidTransition, purchase.ID, purchase.Status))
	case purchase.RazorpayPaymentID != "" && purchase.RazorpayPaymentID != in.PaymentID:
		return deny("payment_mismatch", fmt.Errorf("%w: payment id does not match purchase", domainErrors.ErrStateConflict))
	}

	var minor int64
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return deny("invalid_amount", domainErrors.Invalid("amount", "must be positive"))
		}
		if in.Amount.GreaterThan(purchase.Amount) {
			return deny("invalid_amount", domainErrors.Invalid("amount", "exceeds the charged amount"))
		}
		converted, err := model.MinorUnits(*in.Amount)
		if err != nil {
			return deny("invalid_amount", domainErrors.Invalid("amount", err.Error()))
		}
		minor = converted
	}

	event.Outcome = audit.OutcomeAttempted
	u.recorder.Record(ctx, event)

	refund, err := u.gateway.Refund(ctx, in.PaymentID, razorpay.RefundRequest{Amount: minor, Speed: speed, Notes: in.Notes})
	if err != nil {
		event.Outcome = audit.OutcomeFailed
		event.Reason = "gateway_rejected"
		u.recorder.Record(ctx, event)
		return nil, err
	}
	event.RefundID = refund.ID

	refunded := purchase.Amount
	switch {
	case refund.Amount > 0:
		refunded = model.FromMinorUnits(refund.Amount)
	case in.Amount != nil:
		refunded = *in.Amount
	}

	transition, err := u.purchases.MarkRefunded(ctx, model.PurchaseKey{OrderID: purchase.RazorpayOrderID, PurchaseID: purchase.ID}, model.TransitionPatch{
		RefundID:       refund.ID,
		RefundedAmount: refunded,
		RefundNotes:    in.Notes,
	})
	if err != nil {
		event.Outcome = audit.OutcomeFailed
		event.Reason = "local_state_stale"
		u.recorder.Record(ctx, event)
		u.logger.Error("refund issued but not recorded",
			slog.String("refundId", refund.ID),
			slog.String("purchaseId", purchase.ID),
			slog.String("error", err.Error()),
		)
		return &RefundResult{RefundID: refund.ID, RefundedAmount: refunded, PurchaseID: purchase.ID, Status: purchase.Status},
			&RefundStateStaleError{RefundID: refund.ID, Err: err}
	}

	event.Outcome = audit.OutcomeSucceeded
	u.recorder.Record(ctx, event)
	return &RefundResult{
		Success:        true,
		Status:         transition.Purchase.Status,
		RefundID:       refund.ID,
		RefundedAmount: refunded,
		PurchaseID:     transition.Purchase.ID,
	}, nil
}

func (u *RefundUseCase) lookup(ctx context.Context, in RefundInput) (*model.Purchase, error) {
	key := model.PurchaseKey{OrderID: strings.TrimSpace(in.OrderID), PurchaseID: strings.TrimSpace(in.PurchaseID)}
	if !key.Empty() {
		return u.purchases.Get(ctx, key)
	}
	return u.purchases.GetByPaymentID(ctx, in.PaymentID)
}
