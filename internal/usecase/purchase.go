package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
	"github.com/polkiloo/travelpay/internal/domain/repository"
)

// TransitionResult is the purchase after a transition attempt. Applied is false for
// idempotent replays that found the purchase already in the target state.
type TransitionResult struct {
	Purchase *model.Purchase
	Applied  bool
}

// PurchaseUseCase drives the purchase status machine. Concurrency is resolved by the
// repository's compare-and-set, never by local locking.
type PurchaseUseCase struct {
	repo   repository.PurchaseRepository
	logger *slog.Logger
}

// NewPurchaseUseCase constructs the status machine.
func NewPurchaseUseCase(repo repository.PurchaseRepository, logger *slog.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{repo: repo, logger: logger}
}

// settleFunc decides the outcome of a lost compare-and-set from the current record.
// It returns nil when the purchase already reflects the requested change.
type settleFunc func(current *model.Purchase) error

// MarkPaid moves a created purchase to paid. Replays carrying the same payment id are
// no-ops; a different payment id on a paid purchase is a conflict.
func (u *PurchaseUseCase) MarkPaid(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*TransitionResult, error) {
	if patch.PaymentID == "" {
		return nil, domainErrors.Invalid("paymentId", "is required")
	}
	return u.transition(ctx, key, model.PurchaseStatusCreated, model.PurchaseStatusPaid, patch, func(current *model.Purchase) error {
		switch current.Status {
		case model.PurchaseStatusPaid:
			if current.RazorpayPaymentID != "" && current.RazorpayPaymentID != patch.PaymentID {
				return fmt.Errorf("%w: purchase %s already paid by %s", domainErrors.ErrStateConflict, current.ID, current.RazorpayPaymentID)
			}
			return nil
		case model.PurchaseStatusRefunded:
			if current.RazorpayPaymentID == patch.PaymentID {
				return nil
			}
			return fmt.Errorf("%w: purchase %s is refunded", domainErrors.ErrStateConflict, current.ID)
		default:
			return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current.Status, model.PurchaseStatusPaid)
		}
	})
}

// MarkFailed moves a created purchase to failed. A paid purchase rejects the
// transition with ErrStateConflict and stays untouched.
func (u *PurchaseUseCase) MarkFailed(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*TransitionResult, error) {
	result, err := u.transition(ctx, key, model.PurchaseStatusCreated, model.PurchaseStatusFailed, patch, func(current *model.Purchase) error {
		switch current.Status {
		case model.PurchaseStatusFailed:
			return nil
		case model.PurchaseStatusPaid, model.PurchaseStatusRefunded:
			return fmt.Errorf("%w: purchase %s is %s", domainErrors.ErrStateConflict, current.ID, current.Status)
		default:
			return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current.Status, model.PurchaseStatusFailed)
		}
	})
	if errors.Is(err, domainErrors.ErrStateConflict) {
		u.logger.Warn("failure reported for settled purchase",
			slog.String("orderId", key.OrderID),
			slog.String("purchaseId", key.PurchaseID),
			slog.String("paymentId", patch.PaymentID),
			slog.String("failureCode", patch.FailureCode),
			slog.String("error", err.Error()),
		)
	}
	return result, err
}

// MarkRefunded moves a paid purchase to refunded.
func (u *PurchaseUseCase) MarkRefunded(ctx context.Context, key model.PurchaseKey, patch model.TransitionPatch) (*TransitionResult, error) {
	return u.transition(ctx, key, model.PurchaseStatusPaid, model.PurchaseStatusRefunded, patch, func(current *model.Purchase) error {
		switch {
		case current.Status == model.PurchaseStatusRefunded && (patch.RefundID == "" || current.RefundID == patch.RefundID):
			return nil
		case current.Status == model.PurchaseStatusRefunded:
			return fmt.Errorf("%w: purchase %s already refunded by %s", domainErrors.ErrStateConflict, current.ID, current.RefundID)
		default:
			return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current.Status, model.PurchaseStatusRefunded)
		}
	})
}

// Get returns the purchase addressed by key.
func (u *PurchaseUseCase) Get(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error) {
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}
	return u.repo.Get(ctx, key)
}

// GetByPaymentID returns the purchase settled by the gateway payment id.
func (u *PurchaseUseCase) GetByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error) {
	if paymentID == "" {
		return nil, domainErrors.Invalid("paymentId", "is required")
	}
	return u.repo.GetByPaymentID(ctx, paymentID)
}

func (u *PurchaseUseCase) transition(ctx context.Context, key model.PurchaseKey, from, to model.PurchaseStatus, patch model.TransitionPatch, settle settleFunc) (*TransitionResult, error) {
	if key.Empty() {
		return nil, domainErrors.ErrMissingCorrelation
	}

	purchase, err := u.repo.Transition(ctx, key, from, to, patch)
	if err == nil {
		u.logger.Info("purchase transitioned",
			slog.String("purchaseId", purchase.ID),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return &TransitionResult{Purchase: purchase, Applied: true}, nil
	}
	if !errors.Is(err, domainErrors.ErrPreconditionFailed) {
		return nil, err
	}

	current, err := u.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := settle(current); err != nil {
		return &TransitionResult{Purchase: current}, err
	}
	return &TransitionResult{Purchase: current}, nil
}
