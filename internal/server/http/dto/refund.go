package dto

import "github.com/shopspring/decimal"

// RefundRequest asks for a full or partial refund of a paid purchase.
// Amount is in major currency units.
type RefundRequest struct {
	PurchaseID string            `json:"purchaseId"`
	OrderID    string            `json:"razorpayOrderId"`
	PaymentID  string            `json:"razorpayPaymentId"`
	Amount     *decimal.Decimal  `json:"amount"`
	Speed      string            `json:"speed"`
	Notes      map[string]string `json:"notes"`
}

// RefundResponse reports an issued refund.
type RefundResponse struct {
	Success        bool             `json:"success"`
	Status         string           `json:"status,omitempty"`
	RefundID       string           `json:"refundId,omitempty"`
	RefundedAmount *decimal.Decimal `json:"refundedAmount,omitempty"`
	PurchaseID     string           `json:"purchaseId,omitempty"`
	Error          string           `json:"error,omitempty"`
}
