package repository

import (
	"context"

	"github.com/polkiloo/travelpay/internal/domain/model"
)

// PurchaseRepository describes persistence operations with purchases.
//
// Transition is a compare-and-set: it applies patch and moves the purchase to
// status `to` only while its current status equals `from`, and returns
// ErrPreconditionFailed otherwise.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error)
	Get(ctx context.Context, key model.PurchaseKey) (*model.Purchase, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error)
	Transition(ctx context.Context, key model.PurchaseKey, from, to model.PurchaseStatus, patch model.TransitionPatch) (*model.Purchase, error)
	ClaimReceipt(ctx context.Context, purchaseID string) (bool, error)
	ReleaseReceipt(ctx context.Context, purchaseID string) error
}

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
