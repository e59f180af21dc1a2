package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus describes the payment lifecycle of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusCreated  PurchaseStatus = "created"
	PurchaseStatusPaid     PurchaseStatus = "paid"
	PurchaseStatusFailed   PurchaseStatus = "failed"
	PurchaseStatusRefunded PurchaseStatus = "refunded"
)

// CanTransition reports whether moving from s to next is a legal state change.
func (s PurchaseStatus) CanTransition(next PurchaseStatus) bool {
	switch s {
	case PurchaseStatusCreated:
		return next == PurchaseStatusPaid || next == PurchaseStatusFailed
	case PurchaseStatusPaid:
		return next == PurchaseStatusRefunded
	default:
		return false
	}
}

// CheckoutType distinguishes standalone packages from scheduled departures.
type CheckoutType string

const (
	CheckoutTypePackage        CheckoutType = "package"
	CheckoutTypeFixedDeparture CheckoutType = "fixed-departure"
)

// ParseCheckoutType normalizes client spellings; anything unknown is a package.
func ParseCheckoutType(raw string) CheckoutType {
	switch raw {
	case "fixed-departure", "fixed_departure", "fixedDeparture", "departure":
		return CheckoutTypeFixedDeparture
	default:
		return CheckoutTypePackage
	}
}

// UnitLabel is the human label of the pricing unit.
type UnitLabel string

const (
	UnitLabelPerPerson UnitLabel = "Per Person"
	UnitLabelPerCouple UnitLabel = "Per Couple"
)

// Purchase is the record of a single checkout attempt and its outcome.
// Money fields are in major currency units.
type Purchase struct {
	ID              string
	InternalOrderID string
	ReceiptNumber   string

	FullName string
	Email    string
	Phone    string
	UserID   string

	PackageID    string
	PackageSlug  string
	PackageTitle string
	Destination  string
	TravelDate   string
	CheckoutType CheckoutType
	CustomerNote string

	Travellers int
	UnitPrice  decimal.Decimal
	UnitLabel  UnitLabel
	Amount     decimal.Decimal
	Currency   string

	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	PaymentMethod     string

	Status        PurchaseStatus
	FailureReason string
	FailureCode   string
	FailureSource string
	FailureStep   string

	RefundID       string
	RefundedAmount decimal.Decimal
	RefundNotes    map[string]string

	CreatedAt     time.Time
	PaidAt        *time.Time
	RefundedAt    *time.Time
	ReceiptSentAt *time.Time
	UpdatedAt     time.Time
}

// PurchaseKey locates a purchase. The gateway order id takes precedence.
type PurchaseKey struct {
	OrderID    string
	PurchaseID string
}

// Empty reports whether the key carries no identifier.
func (k PurchaseKey) Empty() bool {
	return k.OrderID == "" && k.PurchaseID == ""
}

// TransitionPatch carries the fields written by a status transition.
type TransitionPatch struct {
	PaymentID     string
	Signature     string
	PaymentMethod string

	FailureCode   string
	FailureReason string
	FailureSource string
	FailureStep   string

	RefundID       string
	RefundedAmount decimal.Decimal
	RefundNotes    map[string]string
}
